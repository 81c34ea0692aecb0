// Package supervisor owns the set of configured probes, rendering
// each one's TOML file and spawning/stopping the external netspot
// child process that reads it.
package supervisor

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/netio"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// Status is the externally visible lifecycle state of one probe.
type Status string

const (
	StatusRunning  Status = "running"
	StatusStopped  Status = "stopped"
	StatusDisabled Status = "disabled"
)

// StopTimeout bounds how long StopByID waits after SIGINT before
// escalating to SIGKILL.
const StopTimeout = 5 * time.Second

// StatusEntry is the {id,name,status} projection returned by listing
// operations.
type StatusEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// TestAlarmSeed carries the user-overridable fields of a synthetic
// test alarm; everything else is filled in by SendTestAlarm.
type TestAlarmSeed struct {
	Name        string               `json:"name"`
	Stat        messages.Stat        `json:"stat"`
	Status      messages.AlertStatus `json:"status"`
	Value       float64              `json:"value"`
	Probability float64              `json:"probability"`
}

// DefaultTestAlarmSeed matches the original's documented defaults.
func DefaultTestAlarmSeed() TestAlarmSeed {
	return TestAlarmSeed{
		Name: "Test alarm", Stat: messages.StatRSyn,
		Status: messages.StatusUpAlert, Value: 1000.0, Probability: 0.75,
	}
}

// NetspotBinary is the external process name the supervisor spawns.
// Overridable for tests.
var NetspotBinary = "netspot"

type probe struct {
	cfg      netspotcfg.ProbeConfig
	process  *runningProcess
	tomlPath string
}

// Supervisor owns every configured probe's process handle behind a
// single writer / many readers lock. runtimePath is where TOML files
// and the two listener sockets live.
type Supervisor struct {
	mu          sync.RWMutex
	probes      map[int]*probe
	runtimePath string

	alarmSocketPath string
	dataSocketPath  string

	bus *bus.Bus

	nowNano func() int64
}

// New constructs the supervisor, seeded with the configurations
// already present in the store, and binds the two Unix-domain
// listeners. A bind failure is fatal to startup.
func New(runtimePath string, initial map[int]netspotcfg.ProbeConfig, b *bus.Bus, sig *shutdown.Signal) (*Supervisor, error) {
	alarmPath := filepath.Join(runtimePath, "netspot_alarm.socket")
	dataPath := filepath.Join(runtimePath, "netspot_data.socket")

	s := &Supervisor{
		probes:          make(map[int]*probe, len(initial)),
		runtimePath:     runtimePath,
		alarmSocketPath: alarmPath,
		dataSocketPath:  dataPath,
		bus:             b,
		nowNano:         func() int64 { return time.Now().UnixNano() },
	}
	for id, cfg := range initial {
		s.probes[id] = &probe{cfg: cfg, tomlPath: s.tomlPathFor(id)}
	}

	alarmListener, alarmLn, err := netio.New(netio.KindAlarm, alarmPath, b, sig)
	if err != nil {
		return nil, apierr.New(apierr.StartupFatal, fmt.Errorf("bind alarm socket: %w", err))
	}
	dataListener, dataLn, err := netio.New(netio.KindData, dataPath, b, sig)
	if err != nil {
		alarmLn.Close()
		return nil, apierr.New(apierr.StartupFatal, fmt.Errorf("bind data socket: %w", err))
	}
	go alarmListener.Serve(alarmLn)
	go dataListener.Serve(dataLn)

	return s, nil
}

func (s *Supervisor) tomlPathFor(id int) string {
	return filepath.Join(s.runtimePath, fmt.Sprintf("netspot_%d.toml", id))
}

func statusOf(p *probe) Status {
	if !p.cfg.Configuration.Enabled {
		return StatusDisabled
	}
	if p.process == nil {
		return StatusStopped
	}
	return StatusRunning
}

// StatusByID returns the current status of one probe.
func (s *Supervisor) StatusByID(id int) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.probes[id]
	if !ok {
		return "", apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	return statusOf(p), nil
}

// StatusAll returns a snapshot list of every probe's status, in no
// particular order guarantee beyond what map iteration gives; callers
// needing a stable order should sort by ID.
func (s *Supervisor) StatusAll() []StatusEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StatusEntry, 0, len(s.probes))
	for id, p := range s.probes {
		out = append(out, StatusEntry{ID: id, Name: p.cfg.Configuration.Name, Status: statusOf(p)})
	}
	return out
}

// SendTestAlarm synthesizes an alarm message from seed and publishes
// it on the bus. It always reports success: the store's writer task
// subscribes before the facade finishes constructing, so by the time
// any caller can reach this method there is always at least one live
// subscriber, making the original "no subscriber" failure mode
// unreachable in this wiring.
func (s *Supervisor) SendTestAlarm(seed TestAlarmSeed) bool {
	s.bus.Publish(messages.AlarmMessage{
		Time:        s.nowNano(),
		Name:        seed.Name,
		Series:      "TEST ALARM",
		Stat:        seed.Stat,
		Status:      seed.Status,
		Value:       seed.Value,
		Probability: seed.Probability,
		Code:        1,
		Type:        messages.TypeAlarm,
	})
	return true
}
