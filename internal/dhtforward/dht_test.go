package dhtforward

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

func TestForwarderSendsAlarmEnvelope(t *testing.T) {
	received := make(chan envelope, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env envelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
		received <- env
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := bus.New()
	sig := shutdown.New()
	New(srv.URL, []string{"192.0.2.1"}, b, sig)

	b.Publish(messages.AlarmMessage{Name: "probe", Stat: messages.StatRSyn, Type: messages.TypeAlarm})

	select {
	case env := <-received:
		assert.Equal(t, topicName, env.RequestPostTopicUUID.TopicName)
		assert.Equal(t, topicUUID, env.RequestPostTopicUUID.TopicUUID)
		assert.Equal(t, description, env.RequestPostTopicUUID.Value.Description)
		assert.Equal(t, []string{"192.0.2.1"}, env.RequestPostTopicUUID.Value.Addresses)
		assert.Equal(t, "probe", env.RequestPostTopicUUID.Value.Alarm.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not send")
	}

	sig.Shutdown()
}

func TestForwarderIgnoresDataMessages(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := bus.New()
	sig := shutdown.New()
	New(srv.URL, nil, b, sig)

	b.Publish(messages.DataMessage{Name: "probe", Type: messages.TypeData})
	time.Sleep(100 * time.Millisecond)
	sig.Shutdown()

	assert.False(t, called)
}
