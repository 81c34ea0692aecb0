package netspotcfg

import (
	"fmt"
	"strconv"
	"strings"
)

// TOML renders the deterministic configuration file the netspot
// binary is launched with. alarmSocketPath and dataSocketPath are
// absolute filesystem paths (no "unix://" prefix); this function adds
// it. The section order and field layout are pinned by the canonical
// default-configuration scenario: [miner], [analyzer],
// [exporter.socket], optional [exporter.influxdb], [spot], then one
// [spot.<STAT>] block per enabled statistic carrying an override.
func (p ProbeConfig) TOML(alarmSocketPath, dataSocketPath string) string {
	sections := []string{
		minerSection(p.Configuration),
		analyzerSection(p.Stats),
		exporterSocketSection(p.Configuration.Name, alarmSocketPath, dataSocketPath),
	}
	if p.InfluxDB1 != nil {
		sections = append(sections, exporterInfluxDBSection(*p.InfluxDB1))
	}
	sections = append(sections, spotSection(p.Spot))
	if overrides := spotOverrideSections(p.Stats); overrides != "" {
		sections = append(sections, overrides)
	}
	return strings.Join(sections, "\n\n") + "\n"
}

func minerSection(m MinerConfig) string {
	return fmt.Sprintf(
		"[miner]\ndevice = %q\npromiscuous = %v\nsnapshot_len = 65535\ntimeout = \"0s\"",
		m.Device, m.Promiscuous,
	)
}

func analyzerSection(stats StatsConfig) string {
	var names []string
	for _, entry := range stats.byStat() {
		if entry.Cfg != nil && entry.Cfg.Enabled {
			names = append(names, string(entry.Name))
		}
	}
	list := "[]"
	if len(names) > 0 {
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = strconv.Quote(n)
		}
		list = "[" + strings.Join(quoted, ", ") + "]"
	}
	return fmt.Sprintf("[analyzer]\nperiod = \"1s\"\nstats = %s", list)
}

func exporterSocketSection(tag, alarmSocketPath, dataSocketPath string) string {
	return fmt.Sprintf(
		"[exporter.socket]\ndata = \"unix://%s\"\nalarm = \"unix://%s\"\ntag = %q\nformat = \"json\"",
		dataSocketPath, alarmSocketPath, tag,
	)
}

// exporterInfluxDBSection emits one line per field. The alarm field
// reads influxdb1.alarm, not a repeat of the data flag — the original
// exporter's copy-paste bug is deliberately not reproduced here.
func exporterInfluxDBSection(c InfluxDB1Config) string {
	var b strings.Builder
	b.WriteString("[exporter.influxdb]\n")
	fmt.Fprintf(&b, "data = %v\n", c.Data)
	fmt.Fprintf(&b, "alarm = %v\n", c.Alarm)
	fmt.Fprintf(&b, "address = %q\n", c.Address)
	fmt.Fprintf(&b, "database = %q\n", c.Database)
	fmt.Fprintf(&b, "username = %q\n", c.Username)
	fmt.Fprintf(&b, "password = %q\n", c.Password)
	fmt.Fprintf(&b, "batch_size = %d\n", c.BatchSize)
	fmt.Fprintf(&b, "agent_name = %q", c.AgentName)
	return b.String()
}

func spotSection(s SpotConfig) string {
	return fmt.Sprintf(
		"[spot]\ndepth = %d\nq = %s\nn_init = %d\nlevel = %s\nup = %v\ndown = %v\nalert = %v\nbounded = %v\nmax_excess = %d",
		s.Depth, formatFloat(s.Q), s.NInit, formatFloat(s.Level),
		s.Up, s.Down, s.Alert, s.Bounded, s.MaxExcess,
	)
}

// spotOverrideSections builds one "[spot.<STAT>]" block per enabled
// statistic that sets at least one tuning field, in fixed stat order,
// separated by a blank line between blocks.
func spotOverrideSections(stats StatsConfig) string {
	var blocks []string
	for _, entry := range stats.byStat() {
		if entry.Cfg == nil || !entry.Cfg.Enabled {
			continue
		}
		fields := statOverrideFields(entry.Cfg)
		if fields == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[spot.%s]\n%s", entry.Name, fields))
	}
	return strings.Join(blocks, "\n\n")
}

func statOverrideFields(c *StatConfig) string {
	var lines []string
	if c.Depth != nil {
		lines = append(lines, fmt.Sprintf("depth = %d", *c.Depth))
	}
	if c.Q != nil {
		lines = append(lines, fmt.Sprintf("q = %s", formatFloat(*c.Q)))
	}
	if c.NInit != nil {
		lines = append(lines, fmt.Sprintf("n_init = %d", *c.NInit))
	}
	if c.Level != nil {
		lines = append(lines, fmt.Sprintf("level = %s", formatFloat(*c.Level)))
	}
	if c.Up != nil {
		lines = append(lines, fmt.Sprintf("up = %v", *c.Up))
	}
	if c.Down != nil {
		lines = append(lines, fmt.Sprintf("down = %v", *c.Down))
	}
	if c.Alert != nil {
		lines = append(lines, fmt.Sprintf("alert = %v", *c.Alert))
	}
	if c.Bounded != nil {
		lines = append(lines, fmt.Sprintf("bounded = %v", *c.Bounded))
	}
	if c.MaxExcess != nil {
		lines = append(lines, fmt.Sprintf("max_excess = %d", *c.MaxExcess))
	}
	return strings.Join(lines, "\n")
}

// formatFloat renders a float the way a TOML writer would for these
// small decimal tuning values (0.00001, 0.98, ...): shortest
// round-tripping decimal form, never scientific notation.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
