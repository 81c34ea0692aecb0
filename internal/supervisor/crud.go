package supervisor

import (
	"errors"
	"log"
	"os"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
)

// AddProbe registers a newly persisted configuration under id and, if
// enabled, starts it immediately — POSTing a configuration yields a
// running probe, matching the control surface's CRUD contract.
func (s *Supervisor) AddProbe(id int, cfg netspotcfg.ProbeConfig) error {
	s.mu.Lock()
	if _, exists := s.probes[id]; exists {
		s.mu.Unlock()
		return apierr.Newf(apierr.InvalidRequest, "probe %d already registered", id)
	}
	s.probes[id] = &probe{cfg: cfg, tomlPath: s.tomlPathFor(id)}
	s.mu.Unlock()

	if !cfg.Configuration.Enabled {
		return nil
	}
	_, err := s.StartByID(id)
	return err
}

// SetProbe replaces id's configuration. If the probe was running and
// the new configuration disables it, the live process is stopped;
// otherwise a running process keeps executing its old TOML until an
// explicit restart picks up the change.
func (s *Supervisor) SetProbe(id int, cfg netspotcfg.ProbeConfig) error {
	s.mu.Lock()
	p, ok := s.probes[id]
	if !ok {
		s.mu.Unlock()
		return apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	wasRunning := p.process != nil
	p.cfg = cfg
	s.mu.Unlock()

	if wasRunning && !cfg.Configuration.Enabled {
		_, err := s.StopByID(id)
		return err
	}
	return nil
}

// RemoveProbe stops id if running and forgets its configuration.
func (s *Supervisor) RemoveProbe(id int) error {
	s.mu.RLock()
	p, ok := s.probes[id]
	s.mu.RUnlock()
	if !ok {
		return apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	if statusOf(p) == StatusRunning {
		if _, err := s.StopByID(id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.probes, id)
	if err := os.Remove(p.tomlPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("supervisor: could not remove toml for deleted probe %d: %v", id, err)
	}
	return nil
}

// ConfigByID returns the configuration the supervisor currently holds
// for id, or a NotFound error if id is not registered.
func (s *Supervisor) ConfigByID(id int) (netspotcfg.ProbeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.probes[id]
	if !ok {
		return netspotcfg.ProbeConfig{}, apierr.Newf(apierr.NotFound, "probe %d not found", id)
	}
	return p.cfg, nil
}
