package store

import (
	"encoding/json"
	"fmt"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/webhook"
)

// AddWebhook inserts w and returns its new id.
func (s *Store) AddWebhook(w webhook.Webhook) (int, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return 0, apierr.New(apierr.InvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.Exec(`INSERT INTO webhooks (config) VALUES (?)`, string(raw))
	if err != nil {
		return 0, apierr.New(apierr.PersistenceUnexpected, err)
	}
	if err := rowCountError(result, "insert webhook"); err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, apierr.New(apierr.PersistenceUnexpected, err)
	}
	return int(id), nil
}

// GetWebhook returns the webhook for id, or found=false if absent.
func (s *Store) GetWebhook(id int) (w webhook.Webhook, found bool, err error) {
	s.mu.Lock()
	var raw string
	selErr := s.db.Get(&raw, `SELECT config FROM webhooks WHERE id = ?`, id)
	s.mu.Unlock()

	if selErr != nil {
		if isNoRows(selErr) {
			return w, false, nil
		}
		return w, false, apierr.New(apierr.PersistenceUnexpected, selErr)
	}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return w, false, apierr.New(apierr.PersistenceUnexpected, err)
	}
	return w, true, nil
}

// SetWebhook overwrites the row for id.
func (s *Store) SetWebhook(id int, w webhook.Webhook) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return apierr.New(apierr.InvalidRequest, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.Exec(`UPDATE webhooks SET config = ? WHERE id = ?`, string(raw), id)
	if err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	return rowCountError(result, fmt.Sprintf("webhook %d not found", id))
}

// DeleteWebhook removes the row for id.
func (s *Store) DeleteWebhook(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.db.Exec(`DELETE FROM webhooks WHERE id = ?`, id)
	if err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	return rowCountError(result, fmt.Sprintf("webhook %d not found", id))
}

type webhookRow struct {
	ID     int    `db:"id"`
	Config string `db:"config"`
}

// ListWebhooks returns the {id,name} projection, ordered by id.
func (s *Store) ListWebhooks() ([]webhook.Item, error) {
	s.mu.Lock()
	var rows []webhookRow
	err := s.db.Select(&rows, `SELECT id, config FROM webhooks ORDER BY id`)
	s.mu.Unlock()
	if err != nil {
		return nil, apierr.New(apierr.PersistenceUnexpected, err)
	}

	items := make([]webhook.Item, 0, len(rows))
	for _, row := range rows {
		var w webhook.Webhook
		if err := json.Unmarshal([]byte(row.Config), &w); err != nil {
			return nil, apierr.New(apierr.PersistenceUnexpected, fmt.Errorf("webhook %d: %w", row.ID, err))
		}
		items = append(items, webhook.Item{ID: row.ID, Name: w.Name})
	}
	return items, nil
}

// GetWebhooks returns every webhook keyed by id. A parse failure on
// any row aborts the whole call.
func (s *Store) GetWebhooks() (map[int]webhook.Webhook, error) {
	s.mu.Lock()
	var rows []webhookRow
	err := s.db.Select(&rows, `SELECT id, config FROM webhooks`)
	s.mu.Unlock()
	if err != nil {
		return nil, apierr.New(apierr.PersistenceUnexpected, err)
	}

	out := make(map[int]webhook.Webhook, len(rows))
	for _, row := range rows {
		var w webhook.Webhook
		if err := json.Unmarshal([]byte(row.Config), &w); err != nil {
			return nil, apierr.New(apierr.PersistenceUnexpected, fmt.Errorf("webhook %d: %w", row.ID, err))
		}
		out[row.ID] = w
	}
	return out, nil
}
