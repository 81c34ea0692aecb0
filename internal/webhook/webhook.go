// Package webhook models user-registered HTTP callbacks and the
// dispatcher that fans each bus message out to the ones whose type
// filter matches.
package webhook

import (
	"encoding/json"
	"fmt"
)

// Method is the HTTP verb a webhook is invoked with.
type Method string

const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
	MethodPut  Method = "PUT"
)

// StatsType selects which message kinds trigger a webhook.
type StatsType string

const (
	StatsAlarms StatsType = "alarms"
	StatsBoth   StatsType = "both"
	StatsData   StatsType = "data"
)

// Headers is the user-supplied extra header set, added on top of the
// always-present Content-Type: application/json.
type Headers map[string]string

// Webhook is a registered HTTP callback target.
type Webhook struct {
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Method    Method    `json:"method"`
	Headers   Headers   `json:"headers"`
	StatsType StatsType `json:"type"`
}

type webhookWire struct {
	Name      *string    `json:"name"`
	Address   *string    `json:"address"`
	Method    *Method    `json:"method"`
	Headers   Headers    `json:"headers"`
	StatsType *StatsType `json:"type"`
}

// UnmarshalJSON requires name and address and defaults method to POST
// and type to "both".
func (w *Webhook) UnmarshalJSON(data []byte) error {
	var wire webhookWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Name == nil {
		return fmt.Errorf("webhook: name is required")
	}
	if wire.Address == nil {
		return fmt.Errorf("webhook: address is required")
	}
	w.Name = *wire.Name
	w.Address = *wire.Address
	w.Method = MethodPost
	if wire.Method != nil {
		w.Method = *wire.Method
		if !validMethods[w.Method] {
			return fmt.Errorf("webhook: unknown method %q", w.Method)
		}
	}
	w.Headers = wire.Headers
	if w.Headers == nil {
		w.Headers = Headers{}
	}
	w.StatsType = StatsBoth
	if wire.StatsType != nil {
		w.StatsType = *wire.StatsType
		if !validStatsTypes[w.StatsType] {
			return fmt.Errorf("webhook: unknown type %q", w.StatsType)
		}
	}
	return nil
}

var validMethods = map[Method]bool{
	MethodGet:  true,
	MethodPost: true,
	MethodPut:  true,
}

var validStatsTypes = map[StatsType]bool{
	StatsAlarms: true,
	StatsBoth:   true,
	StatsData:   true,
}

// Item is the {id,name} projection returned by list endpoints.
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
