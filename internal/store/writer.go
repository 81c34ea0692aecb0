package store

import (
	"log"
	"time"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// StartWriter subscribes the store to b and runs the background
// writer: every bus message is inserted into alarms or data according
// to its variant, and every SweepInterval a retention sweep deletes
// rows older than RetentionWindow. Subscribe before any producer
// publishes, since this consumer must not miss messages. The returned
// subscription lets a caller retire this particular writer (e.g.
// before swapping in a reopened Store for a restore) without tearing
// down every other bus consumer via the shutdown signal.
func (s *Store) StartWriter(b *bus.Bus, sig *shutdown.Signal) *bus.Subscription {
	sub := b.Subscribe()
	obs := sig.Observe()
	go s.runWriter(sub, obs)
	return sub
}

func (s *Store) runWriter(sub *bus.Subscription, obs *shutdown.Observer) {
	defer obs.Release()
	defer sub.Unsubscribe()

	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			if err := s.insert(msg); err != nil {
				log.Printf("store writer: insert failed: %v", err)
			}
		case <-ticker.C:
			if err := s.sweep(time.Now()); err != nil {
				log.Printf("store writer: retention sweep failed: %v", err)
			}
		case <-obs.Done():
			return
		}
	}
}

func (s *Store) insert(msg messages.Message) error {
	raw, err := messages.ToJSON(msg)
	if err != nil {
		return apierr.New(apierr.DecodeSkip, err)
	}

	var table string
	var t int64
	switch m := msg.(type) {
	case messages.AlarmMessage:
		table, t = "alarms", m.Time
	case messages.DataMessage:
		table, t = "data", m.Time
	default:
		return apierr.Newf(apierr.DecodeSkip, "unknown message variant %T", msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO `+table+` (time, message) VALUES (?, ?)`, t, string(raw))
	if err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	return nil
}

// sweep deletes alarm/data rows older than RetentionWindow relative
// to now.
func (s *Store) sweep(now time.Time) error {
	cutoff := now.Add(-RetentionWindow).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM alarms WHERE time < ?`, cutoff); err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	if _, err := s.db.Exec(`DELETE FROM data WHERE time < ?`, cutoff); err != nil {
		return apierr.New(apierr.PersistenceUnexpected, err)
	}
	return nil
}
