package store

import (
	"encoding/json"
	"fmt"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
)

// AddConfiguration inserts cfg and returns its new id. Fails unless
// exactly one row was written.
func (s *Store) AddConfiguration(cfg netspotcfg.ProbeConfig) (int, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return 0, apierr.New(apierr.InvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.Exec(`INSERT INTO configurations (config) VALUES (?)`, string(raw))
	if err != nil {
		return 0, apierr.New(apierr.PersistenceUnexpected, err)
	}
	if err := rowCountError(result, "insert configuration"); err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, apierr.New(apierr.PersistenceUnexpected, err)
	}
	return int(id), nil
}

// GetConfiguration returns the configuration for id, or found=false if
// absent.
func (s *Store) GetConfiguration(id int) (cfg netspotcfg.ProbeConfig, found bool, err error) {
	s.mu.Lock()
	var raw string
	selErr := s.db.Get(&raw, `SELECT config FROM configurations WHERE id = ?`, id)
	s.mu.Unlock()

	if selErr != nil {
		if isNoRows(selErr) {
			return cfg, false, nil
		}
		return cfg, false, apierr.New(apierr.PersistenceUnexpected, selErr)
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, false, apierr.New(apierr.PersistenceUnexpected, err)
	}
	return cfg, true, nil
}

// SetConfiguration overwrites the row for id. Returns a NotFound
// apierr.Error if id does not exist.
func (s *Store) SetConfiguration(id int, cfg netspotcfg.ProbeConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return apierr.New(apierr.InvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.Exec(`UPDATE configurations SET config = ? WHERE id = ?`, string(raw), id)
	if err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	return rowCountError(result, fmt.Sprintf("configuration %d not found", id))
}

// DeleteConfiguration removes the row for id.
func (s *Store) DeleteConfiguration(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.Exec(`DELETE FROM configurations WHERE id = ?`, id)
	if err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	return rowCountError(result, fmt.Sprintf("configuration %d not found", id))
}

type configRow struct {
	ID     int    `db:"id"`
	Config string `db:"config"`
}

// GetConfigurations returns every configuration keyed by id. Any row
// that fails to decode as JSON aborts the whole call with an error —
// the store never silently returns a partial configuration map.
func (s *Store) GetConfigurations() (map[int]netspotcfg.ProbeConfig, error) {
	s.mu.Lock()
	var rows []configRow
	err := s.db.Select(&rows, `SELECT id, config FROM configurations`)
	s.mu.Unlock()
	if err != nil {
		return nil, apierr.New(apierr.PersistenceUnexpected, err)
	}

	out := make(map[int]netspotcfg.ProbeConfig, len(rows))
	for _, row := range rows {
		var cfg netspotcfg.ProbeConfig
		if err := json.Unmarshal([]byte(row.Config), &cfg); err != nil {
			return nil, apierr.New(apierr.PersistenceUnexpected, fmt.Errorf("configuration %d: %w", row.ID, err))
		}
		out[row.ID] = cfg
	}
	return out, nil
}
