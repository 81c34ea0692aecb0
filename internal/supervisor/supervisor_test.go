package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// useStandInProcess swaps newCommand for the duration of a test so it
// spawns a long-lived stand-in instead of a real netspot binary,
// letting the test drive start/stop timing without the external
// dependency.
func useStandInProcess(t *testing.T) {
	t.Helper()
	orig := newCommand
	newCommand = func(tomlPath string) *exec.Cmd {
		return exec.Command("sleep", "30")
	}
	t.Cleanup(func() { newCommand = orig })
}

func newTestSupervisor(t *testing.T, initial map[int]netspotcfg.ProbeConfig) (*Supervisor, *bus.Bus, *shutdown.Signal) {
	t.Helper()
	dir := t.TempDir()
	b := bus.New()
	sig := shutdown.New()
	s, err := New(dir, initial, b, sig)
	require.NoError(t, err)
	t.Cleanup(sig.Shutdown)
	return s, b, sig
}

func TestStartByIDRendersTomlAndSpawns(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})

	status, err := s.StartByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)

	_, err = os.Stat(s.tomlPathFor(1))
	assert.NoError(t, err)

	status, err = s.StatusByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestStartByIDIsNoOpWhenAlreadyRunning(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})

	_, err := s.StartByID(1)
	require.NoError(t, err)
	status, err := s.StartByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestDisabledProbeNeverStarts(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	cfg.Configuration.Enabled = false
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})

	status, err := s.StartByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, status)
}

func TestStopByIDRemovesTomlAndProcess(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})

	_, err := s.StartByID(1)
	require.NoError(t, err)
	tomlPath := s.tomlPathFor(1)

	status, err := s.StopByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, status)

	_, err = os.Stat(tomlPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStopByIDOnStoppedProbeIsNoOp(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})

	status, err := s.StopByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusStopped, status)
}

func TestStatusByIDUnknownIsNotFound(t *testing.T) {
	s, _, _ := newTestSupervisor(t, nil)
	_, err := s.StatusByID(42)
	require.Error(t, err)
}

func TestRestartByIDCyclesProcess(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})

	_, err := s.StartByID(1)
	require.NoError(t, err)

	status, err := s.RestartByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestAddProbeStartsEnabledConfiguration(t *testing.T) {
	useStandInProcess(t)
	s, _, _ := newTestSupervisor(t, nil)

	cfg := netspotcfg.DefaultProbeConfig()
	require.NoError(t, s.AddProbe(7, cfg))

	status, err := s.StatusByID(7)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

func TestSetProbeStopsRunningProcessWhenDisabled(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})
	_, err := s.StartByID(1)
	require.NoError(t, err)

	disabled := cfg
	disabled.Configuration.Enabled = false
	require.NoError(t, s.SetProbe(1, disabled))

	status, err := s.StatusByID(1)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, status)
}

func TestRemoveProbeStopsAndForgets(t *testing.T) {
	useStandInProcess(t)
	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})
	_, err := s.StartByID(1)
	require.NoError(t, err)

	require.NoError(t, s.RemoveProbe(1))
	_, err = s.StatusByID(1)
	require.Error(t, err)
}

func TestSendTestAlarmPublishesExactScenarioFields(t *testing.T) {
	s, b, _ := newTestSupervisor(t, nil)

	sub := b.Subscribe()
	defer sub.Unsubscribe()

	ok := s.SendTestAlarm(DefaultTestAlarmSeed())
	assert.True(t, ok)

	select {
	case msg := <-sub.C:
		alarm, isAlarm := msg.(messages.AlarmMessage)
		require.True(t, isAlarm)
		assert.Equal(t, "Test alarm", alarm.Name)
		assert.Equal(t, messages.StatRSyn, alarm.Stat)
		assert.Equal(t, messages.StatusUpAlert, alarm.Status)
		assert.Equal(t, 1000.0, alarm.Value)
		assert.Equal(t, 0.75, alarm.Probability)
		assert.Equal(t, "TEST ALARM", alarm.Series)
		assert.Equal(t, int32(1), alarm.Code)
		assert.Equal(t, messages.TypeAlarm, alarm.Type)
	case <-time.After(time.Second):
		t.Fatal("test alarm was not published")
	}
}

func TestReconcileClearsCrashedProcess(t *testing.T) {
	orig := newCommand
	newCommand = func(tomlPath string) *exec.Cmd {
		return exec.Command("true")
	}
	defer func() { newCommand = orig }()

	cfg := netspotcfg.DefaultProbeConfig()
	s, _, _ := newTestSupervisor(t, map[int]netspotcfg.ProbeConfig{1: cfg})
	_, err := s.StartByID(1)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s.reconcileOnce()
		status, err := s.StatusByID(1)
		return err == nil && status == StatusStopped
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTomlPathsAreScopedToRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	b := bus.New()
	sig := shutdown.New()
	t.Cleanup(sig.Shutdown)
	s, err := New(dir, nil, b, sig)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "netspot_3.toml"), s.tomlPathFor(3))
}
