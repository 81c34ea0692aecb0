package supervisor

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/sifis-home/netspot-control/internal/apierr"
)

// runningProcess tracks one spawned netspot child. exited is closed
// when cmd.Wait returns, letting StopByID race the grace period
// against the process actually exiting.
type runningProcess struct {
	cmd    *exec.Cmd
	exited chan struct{}

	mu      sync.Mutex
	waitErr error
}

// newCommand builds the child process command line. Overridable in
// tests so they can spawn a stand-in process instead of the real
// netspot binary.
var newCommand = func(tomlPath string) *exec.Cmd {
	return exec.Command(NetspotBinary, "-c", tomlPath)
}

func spawnProcess(tomlPath string) (*runningProcess, error) {
	cmd := newCommand(tomlPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	rp := &runningProcess{cmd: cmd, exited: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		rp.mu.Lock()
		rp.waitErr = err
		rp.mu.Unlock()
		close(rp.exited)
	}()
	return rp, nil
}

// stop sends SIGINT, waits up to StopTimeout for the child to exit,
// and escalates to SIGKILL if it hasn't.
func (rp *runningProcess) stop() {
	if err := rp.cmd.Process.Signal(syscall.SIGINT); err != nil {
		log.Printf("supervisor: SIGINT failed, killing directly: %v", err)
		_ = rp.cmd.Process.Kill()
	}

	timer := time.NewTimer(StopTimeout)
	defer timer.Stop()
	select {
	case <-rp.exited:
	case <-timer.C:
		log.Printf("supervisor: process %d did not exit within %s, sending SIGKILL", rp.cmd.Process.Pid, StopTimeout)
		_ = rp.cmd.Process.Kill()
		<-rp.exited
	}
}

// alive reports whether the process is still running (false once it
// has exited), used by the
// reconciliation loop to detect crashed children.
func (rp *runningProcess) alive() bool {
	select {
	case <-rp.exited:
		return false
	default:
		return true
	}
}

// StartByID renders the probe's TOML file and spawns its process. A
// probe already running or disabled is a no-op returning its current
// status. The lock is held only to read and later write the probe's
// map entry, not across the TOML write or the child spawn, matching
// StopByID below.
func (s *Supervisor) StartByID(id int) (Status, error) {
	s.mu.Lock()
	p, ok := s.probes[id]
	if !ok {
		s.mu.Unlock()
		return "", apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	if status := statusOf(p); status != StatusStopped {
		s.mu.Unlock()
		return status, nil
	}
	cfg := p.cfg
	tomlPath := p.tomlPath
	s.mu.Unlock()

	toml := cfg.TOML(s.alarmSocketPath, s.dataSocketPath)
	if err := os.WriteFile(tomlPath, []byte(toml), 0o644); err != nil {
		return "", apierr.New(apierr.ProbeLifecycleTransient, fmt.Errorf("write %s: %w", tomlPath, err))
	}

	rp, err := spawnProcess(tomlPath)
	if err != nil {
		return "", apierr.New(apierr.ProbeLifecycleTransient, fmt.Errorf("spawn probe %d: %w", id, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok = s.probes[id]
	if !ok {
		// Probe was deleted while we were spawning; don't leak the
		// child we just started.
		go rp.stop()
		return "", apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	p.process = rp
	return StatusRunning, nil
}

// StopByID signals the running process and waits for it to exit,
// escalating to SIGKILL after StopTimeout. A probe already stopped or
// disabled is a no-op.
func (s *Supervisor) StopByID(id int) (Status, error) {
	s.mu.Lock()
	p, ok := s.probes[id]
	if !ok {
		s.mu.Unlock()
		return "", apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	if statusOf(p) != StatusRunning {
		status := statusOf(p)
		s.mu.Unlock()
		return status, nil
	}
	rp := p.process
	tomlPath := p.tomlPath
	s.mu.Unlock()

	rp.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok = s.probes[id]
	if ok && p.process == rp {
		p.process = nil
	}
	if err := os.Remove(tomlPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("supervisor: could not remove stale toml %s: %v", tomlPath, err)
	}
	if !ok {
		return StatusStopped, nil
	}
	return statusOf(p), nil
}

// RestartByID stops then starts a probe. Disabled probes are left
// untouched.
func (s *Supervisor) RestartByID(id int) (Status, error) {
	if status, err := s.StatusByID(id); err != nil {
		return "", err
	} else if status == StatusDisabled {
		return status, nil
	}
	if _, err := s.StopByID(id); err != nil {
		return "", err
	}
	return s.StartByID(id)
}

// StartAll fans StartByID out over every configured probe, logging
// individual failures without aborting the rest.
func (s *Supervisor) StartAll() {
	for _, id := range s.ids() {
		if _, err := s.StartByID(id); err != nil {
			log.Printf("supervisor: start probe %d failed: %v", id, err)
		}
	}
}

// StopAll fans StopByID out over every configured probe.
func (s *Supervisor) StopAll() {
	for _, id := range s.ids() {
		if _, err := s.StopByID(id); err != nil {
			log.Printf("supervisor: stop probe %d failed: %v", id, err)
		}
	}
}

// RestartAll fans RestartByID out over every configured probe.
func (s *Supervisor) RestartAll() {
	for _, id := range s.ids() {
		if _, err := s.RestartByID(id); err != nil {
			log.Printf("supervisor: restart probe %d failed: %v", id, err)
		}
	}
}

func (s *Supervisor) ids() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, 0, len(s.probes))
	for id := range s.probes {
		out = append(out, id)
	}
	return out
}
