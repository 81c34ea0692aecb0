package netio

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

func TestListenerParsesBraceFramedAlarms(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "alarm.socket")
	b := bus.New()
	sig := shutdown.New()

	l, ln, err := New(KindAlarm, socketPath, b, sig)
	require.NoError(t, err)
	go l.Serve(ln)

	sub := b.Subscribe()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)

	alarm := `{"time":1,"name":"eth0","series":"eth0","stat":"R_SYN","status":"UP_ALERT","value":1.0,"probability":0.5,"code":0,"type":"alarm"}`
	_, err = conn.Write([]byte(alarm))
	require.NoError(t, err)

	select {
	case msg := <-sub.C:
		got, ok := msg.(messages.AlarmMessage)
		require.True(t, ok)
		assert.Equal(t, messages.StatRSyn, got.Stat)
		assert.Equal(t, "eth0", got.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive published alarm")
	}

	conn.Close()
	sig.Shutdown()
}

func TestListenerHandlesMultipleFramedObjects(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "alarm2.socket")
	b := bus.New()
	sig := shutdown.New()

	l, ln, err := New(KindAlarm, socketPath, b, sig)
	require.NoError(t, err)
	go l.Serve(ln)

	sub := b.Subscribe()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)

	two := `{"time":1,"name":"a","series":"a","stat":"R_SYN","status":"UP_ALERT","value":1.0,"probability":0.5,"code":0,"type":"alarm"}{"time":2,"name":"b","series":"b","stat":"PERF","status":"DOWN_ALERT","value":2.0,"probability":0.1,"code":0,"type":"alarm"}`
	_, err = conn.Write([]byte(two))
	require.NoError(t, err)

	names := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case msg := <-sub.C:
			got := msg.(messages.AlarmMessage)
			names[got.Name] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only received %d messages", i)
		}
	}
	assert.True(t, names["a"])
	assert.True(t, names["b"])

	conn.Close()
	sig.Shutdown()
}

func TestListenerSkipsMalformedObject(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "alarm3.socket")
	b := bus.New()
	sig := shutdown.New()

	l, ln, err := New(KindAlarm, socketPath, b, sig)
	require.NoError(t, err)
	go l.Serve(ln)

	sub := b.Subscribe()

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)

	bad := `{"stat": not json}`
	good := `{"time":1,"name":"ok","series":"ok","stat":"R_SYN","status":"UP_ALERT","value":1.0,"probability":0.5,"code":0,"type":"alarm"}`
	_, err = conn.Write([]byte(bad + good))
	require.NoError(t, err)

	select {
	case msg := <-sub.C:
		got := msg.(messages.AlarmMessage)
		assert.Equal(t, "ok", got.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("did not recover after malformed object")
	}

	conn.Close()
	sig.Shutdown()
}

func TestNewRemovesStaleSocketFile(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "stale.socket")
	// Bind once, leak the listener (simulating a stale file from a
	// previous crashed run) by closing the net.Listener but leaving
	// the path occupied momentarily is not reproducible without a
	// real stale file, so we just create a plain file at the path.
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o644))

	b := bus.New()
	sig := shutdown.New()
	_, ln, err := New(KindData, socketPath, b, sig)
	require.NoError(t, err)
	ln.Close()
}
