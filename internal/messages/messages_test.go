package messages

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlarmMessageRoundTrip(t *testing.T) {
	a := AlarmMessage{
		Time:        1700000000000000000,
		Name:        "Test alarm",
		Series:      "TEST ALARM",
		Stat:        StatRSyn,
		Status:      StatusUpAlert,
		Value:       1000.0,
		Probability: 0.75,
		Code:        1,
		Type:        TypeAlarm,
	}

	raw, err := ToJSON(a)
	require.NoError(t, err)

	var back AlarmMessage
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a, back)
	assert.Equal(t, TypeAlarm, a.Kind())
}

func TestDataMessageOmitsUnsetStats(t *testing.T) {
	v := 3.5
	d := DataMessage{
		Time:   1700000000000000000,
		Name:   "eth0",
		Series: "eth0",
		Type:   TypeData,
		RSyn:   &v,
	}

	raw, err := ToJSON(d)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))

	assert.Contains(t, generic, "R_SYN")
	assert.NotContains(t, generic, "PERF")
	assert.NotContains(t, generic, "TRAFFIC")
	assert.Equal(t, TypeData, d.Kind())
}

func TestKnownStat(t *testing.T) {
	assert.True(t, KnownStat("R_SYN"))
	assert.True(t, KnownStat("TRAFFIC"))
	assert.False(t, KnownStat("NOT_A_STAT"))
}
