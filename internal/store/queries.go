package store

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/messages"
)

type messageRow struct {
	Time    int64  `db:"time"`
	Message string `db:"message"`
}

// queryRows runs the shared time/last query shape against table and
// returns raw JSON message column values in ascending time order.
// When last is non-nil the underlying query orders descending and
// limits, then the result is reversed here so callers always see
// ascending time.
func (s *Store) queryRows(table string, after *int64, last *int) ([]string, error) {
	var b strings.Builder
	b.WriteString("SELECT time, message FROM ")
	b.WriteString(table)
	args := []any{}
	if after != nil {
		b.WriteString(" WHERE time > ?")
		args = append(args, *after)
	}
	if last != nil {
		b.WriteString(" ORDER BY time DESC LIMIT ?")
		args = append(args, *last)
	} else {
		b.WriteString(" ORDER BY time ASC")
	}

	s.mu.Lock()
	var rows []messageRow
	err := s.db.Select(&rows, b.String(), args...)
	s.mu.Unlock()
	if err != nil {
		return nil, apierr.New(apierr.PersistenceUnexpected, err)
	}

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Message
	}
	if last != nil {
		reverse(out)
	}
	return out, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// GetAlarms returns alarm rows with time > after (if given), the most
// recent `last` of them (if given) in ascending time order. Rows that
// fail to decode are skipped, not fatal to the call.
func (s *Store) GetAlarms(after *int64, last *int) ([]messages.AlarmMessage, error) {
	raw, err := s.queryRows("alarms", after, last)
	if err != nil {
		return nil, err
	}
	out := make([]messages.AlarmMessage, 0, len(raw))
	for _, j := range raw {
		var m messages.AlarmMessage
		if err := json.Unmarshal([]byte(j), &m); err != nil {
			log.Printf("store: skipping malformed alarm row: %v", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// GetData returns data rows with the same time/last semantics as
// GetAlarms.
func (s *Store) GetData(after *int64, last *int) ([]messages.DataMessage, error) {
	raw, err := s.queryRows("data", after, last)
	if err != nil {
		return nil, err
	}
	out := make([]messages.DataMessage, 0, len(raw))
	for _, j := range raw {
		var m messages.DataMessage
		if err := json.Unmarshal([]byte(j), &m); err != nil {
			log.Printf("store: skipping malformed data row: %v", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
