// Package netspotcfg models the per-probe configuration a user
// submits over REST and renders it into the TOML file the external
// netspot binary is launched with.
package netspotcfg

import (
	"encoding/json"
	"fmt"

	"github.com/sifis-home/netspot-control/internal/messages"
)

// MinerConfig is the packet-capture portion of a probe configuration,
// nested under the "configuration" JSON key.
type MinerConfig struct {
	Name        string `json:"name"`
	Device      string `json:"device"`
	Promiscuous bool   `json:"promiscuous"`
	Enabled     bool   `json:"enabled"`
}

type minerConfigWire struct {
	Name        string `json:"name"`
	Device      *string `json:"device"`
	Promiscuous *bool   `json:"promiscuous"`
	Enabled     *bool   `json:"enabled"`
}

// UnmarshalJSON backfills device/promiscuous/enabled with their
// defaults when absent; name is required and non-empty.
func (m *MinerConfig) UnmarshalJSON(data []byte) error {
	var w minerConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Name == "" {
		return fmt.Errorf("netspotcfg: configuration.name is required")
	}
	m.Name = w.Name
	m.Device = "any"
	if w.Device != nil {
		m.Device = *w.Device
	}
	m.Promiscuous = true
	if w.Promiscuous != nil {
		m.Promiscuous = *w.Promiscuous
	}
	m.Enabled = true
	if w.Enabled != nil {
		m.Enabled = *w.Enabled
	}
	return nil
}

// SpotConfig holds the SPOT anomaly-detector tuning shared by every
// statistic unless a per-stat override replaces it.
type SpotConfig struct {
	Depth     int     `json:"depth"`
	Q         float64 `json:"q"`
	NInit     int     `json:"n_init"`
	Level     float64 `json:"level"`
	Up        bool    `json:"up"`
	Down      bool    `json:"down"`
	Alert     bool    `json:"alert"`
	Bounded   bool    `json:"bounded"`
	MaxExcess int     `json:"max_excess"`
}

// DefaultSpotConfig returns the canonical defaults pinned by the
// bootstrap scenario: depth 50, q 1e-5, n_init 2000, level 0.98, up
// alerting on, down alerting off, alerts and bounding enabled.
func DefaultSpotConfig() SpotConfig {
	return SpotConfig{
		Depth: 50, Q: 0.00001, NInit: 2000, Level: 0.98,
		Up: true, Down: false, Alert: true, Bounded: true, MaxExcess: 200,
	}
}

type spotConfigWire struct {
	Depth     *int     `json:"depth"`
	Q         *float64 `json:"q"`
	NInit     *int     `json:"n_init"`
	Level     *float64 `json:"level"`
	Up        *bool    `json:"up"`
	Down      *bool    `json:"down"`
	Alert     *bool    `json:"alert"`
	Bounded   *bool    `json:"bounded"`
	MaxExcess *int     `json:"max_excess"`
}

// UnmarshalJSON overlays only the fields present in data onto the
// canonical defaults.
func (s *SpotConfig) UnmarshalJSON(data []byte) error {
	var w spotConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = DefaultSpotConfig()
	if w.Depth != nil {
		s.Depth = *w.Depth
	}
	if w.Q != nil {
		s.Q = *w.Q
	}
	if w.NInit != nil {
		s.NInit = *w.NInit
	}
	if w.Level != nil {
		s.Level = *w.Level
	}
	if w.Up != nil {
		s.Up = *w.Up
	}
	if w.Down != nil {
		s.Down = *w.Down
	}
	if w.Alert != nil {
		s.Alert = *w.Alert
	}
	if w.Bounded != nil {
		s.Bounded = *w.Bounded
	}
	if w.MaxExcess != nil {
		s.MaxExcess = *w.MaxExcess
	}
	return nil
}

// StatConfig is a per-statistic override. Every tuning field is
// optional; only the ones present are emitted into the stat's own
// [spot.<STAT>] TOML block. enabled gates whether the statistic is
// analyzed at all (and so whether it appears in the analyzer's stats
// list and gets a spot block of its own).
type StatConfig struct {
	Enabled   bool     `json:"enabled"`
	Depth     *int     `json:"depth,omitempty"`
	Q         *float64 `json:"q,omitempty"`
	NInit     *int     `json:"n_init,omitempty"`
	Level     *float64 `json:"level,omitempty"`
	Up        *bool    `json:"up,omitempty"`
	Down      *bool    `json:"down,omitempty"`
	Alert     *bool    `json:"alert,omitempty"`
	Bounded   *bool    `json:"bounded,omitempty"`
	MaxExcess *int     `json:"max_excess,omitempty"`
}

// StatsConfig lists which of the ten known statistics are analyzed,
// each with its own optional override.
type StatsConfig struct {
	AvgPktSize  *StatConfig `json:"avg_pkt_size,omitempty"`
	Perf        *StatConfig `json:"perf,omitempty"`
	RAck        *StatConfig `json:"r_ack,omitempty"`
	RArp        *StatConfig `json:"r_arp,omitempty"`
	RDstSrc     *StatConfig `json:"r_dst_src,omitempty"`
	RDstSrcPort *StatConfig `json:"r_dst_src_port,omitempty"`
	RIcmp       *StatConfig `json:"r_icmp,omitempty"`
	RIp         *StatConfig `json:"r_ip,omitempty"`
	RSyn        *StatConfig `json:"r_syn,omitempty"`
	Traffic     *StatConfig `json:"traffic,omitempty"`
}

// knownStatsKeys are the only JSON keys StatsConfig accepts.
var knownStatsKeys = map[string]bool{
	"avg_pkt_size":   true,
	"perf":           true,
	"r_ack":          true,
	"r_arp":          true,
	"r_dst_src":      true,
	"r_dst_src_port": true,
	"r_icmp":         true,
	"r_ip":           true,
	"r_syn":          true,
	"traffic":        true,
}

// UnmarshalJSON rejects any key outside the ten known statistics
// instead of silently ignoring it, matching the original's enum-keyed
// stats map.
func (s *StatsConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if !knownStatsKeys[key] {
			return fmt.Errorf("netspotcfg: unknown statistic %q", key)
		}
	}

	type statsConfigWire StatsConfig
	var w statsConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = StatsConfig(w)
	return nil
}

// byStat returns, in messages.AllStats order, the (name, *StatConfig)
// pairs — the single place that ties the JSON field layout to the
// fixed statistic ordering used everywhere else.
func (s StatsConfig) byStat() []struct {
	Name messages.Stat
	Cfg  *StatConfig
} {
	return []struct {
		Name messages.Stat
		Cfg  *StatConfig
	}{
		{messages.StatAvgPktSize, s.AvgPktSize},
		{messages.StatPerf, s.Perf},
		{messages.StatRAck, s.RAck},
		{messages.StatRArp, s.RArp},
		{messages.StatRDstSrc, s.RDstSrc},
		{messages.StatRDstSrcPort, s.RDstSrcPort},
		{messages.StatRIcmp, s.RIcmp},
		{messages.StatRIp, s.RIp},
		{messages.StatRSyn, s.RSyn},
		{messages.StatTraffic, s.Traffic},
	}
}

// InfluxDB1Config is the optional exporter.influxdb section.
type InfluxDB1Config struct {
	Data      bool   `json:"data"`
	Alarm     bool   `json:"alarm"`
	Address   string `json:"address"`
	Database  string `json:"database"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	BatchSize int32  `json:"batch_size"`
	AgentName string `json:"agent_name"`
}

// DefaultInfluxDB1Config matches the original exporter's defaults.
func DefaultInfluxDB1Config() InfluxDB1Config {
	return InfluxDB1Config{
		Data: false, Alarm: false,
		Address: "http://127.0.0.1:8086", Database: "netspot",
		Username: "netspot", Password: "netspot",
		BatchSize: 10, AgentName: "local",
	}
}

type influxDB1ConfigWire struct {
	Data      *bool    `json:"data"`
	Alarm     *bool    `json:"alarm"`
	Address   *string  `json:"address"`
	Database  *string  `json:"database"`
	Username  *string  `json:"username"`
	Password  *string  `json:"password"`
	BatchSize *int32   `json:"batch_size"`
	AgentName *string  `json:"agent_name"`
}

// UnmarshalJSON overlays data onto DefaultInfluxDB1Config.
func (c *InfluxDB1Config) UnmarshalJSON(data []byte) error {
	var w influxDB1ConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = DefaultInfluxDB1Config()
	if w.Data != nil {
		c.Data = *w.Data
	}
	if w.Alarm != nil {
		c.Alarm = *w.Alarm
	}
	if w.Address != nil {
		c.Address = *w.Address
	}
	if w.Database != nil {
		c.Database = *w.Database
	}
	if w.Username != nil {
		c.Username = *w.Username
	}
	if w.Password != nil {
		c.Password = *w.Password
	}
	if w.BatchSize != nil {
		c.BatchSize = *w.BatchSize
	}
	if w.AgentName != nil {
		c.AgentName = *w.AgentName
	}
	return nil
}

// ProbeConfig is one user-defined probe instance: what interface to
// sniff, SPOT detector tuning, which statistics are analyzed, and an
// optional InfluxDB exporter. It round-trips losslessly to and from
// its JSON form.
type ProbeConfig struct {
	Configuration MinerConfig      `json:"configuration"`
	Spot          SpotConfig       `json:"spot"`
	Stats         StatsConfig      `json:"stats"`
	InfluxDB1     *InfluxDB1Config `json:"influxdb1,omitempty"`
}

type probeConfigWire struct {
	Configuration MinerConfig      `json:"configuration"`
	Spot          *SpotConfig      `json:"spot"`
	Stats         StatsConfig      `json:"stats"`
	InfluxDB1     *InfluxDB1Config `json:"influxdb1,omitempty"`
}

// UnmarshalJSON backfills a missing spot block with the canonical
// defaults, matching the original's #[serde(default)] on that field.
func (p *ProbeConfig) UnmarshalJSON(data []byte) error {
	var w probeConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Configuration = w.Configuration
	p.Stats = w.Stats
	p.InfluxDB1 = w.InfluxDB1
	if w.Spot != nil {
		p.Spot = *w.Spot
	} else {
		p.Spot = DefaultSpotConfig()
	}
	return nil
}

// DefaultProbeConfig is the seed configuration inserted into an empty
// store on first boot: device "any", promiscuous on, canonical spot
// defaults, and AVG_PKT_SIZE/PERF/R_ARP/R_SYN/TRAFFIC enabled.
func DefaultProbeConfig() ProbeConfig {
	one := 1
	falseVal := false
	return ProbeConfig{
		Configuration: MinerConfig{
			Name: "Default configuration", Device: "any",
			Promiscuous: true, Enabled: true,
		},
		Spot: DefaultSpotConfig(),
		Stats: StatsConfig{
			AvgPktSize: &StatConfig{Enabled: true, MaxExcess: &one},
			Perf:       &StatConfig{Enabled: true, Up: &falseVal},
			RArp:       &StatConfig{Enabled: true},
			RSyn:       &StatConfig{Enabled: true},
			Traffic:    &StatConfig{Enabled: true},
		},
	}
}
