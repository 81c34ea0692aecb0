// Package messages defines the two wire shapes a probe emits (alarm
// and data) and the tagged union used to carry either across the bus.
package messages

import "encoding/json"

// Stat names a computed statistic. Order matters: it is the fixed
// iteration order used by TOML emission and the analyzer stats list.
type Stat string

const (
	StatAvgPktSize   Stat = "AVG_PKT_SIZE"
	StatPerf         Stat = "PERF"
	StatRAck         Stat = "R_ACK"
	StatRArp         Stat = "R_ARP"
	StatRDstSrc      Stat = "R_DST_SRC"
	StatRDstSrcPort  Stat = "R_DST_SRC_PORT"
	StatRIcmp        Stat = "R_ICMP"
	StatRIp          Stat = "R_IP"
	StatRSyn         Stat = "R_SYN"
	StatTraffic      Stat = "TRAFFIC"
)

// AllStats is every known statistic identifier, in fixed order.
var AllStats = []Stat{
	StatAvgPktSize, StatPerf, StatRAck, StatRArp, StatRDstSrc,
	StatRDstSrcPort, StatRIcmp, StatRIp, StatRSyn, StatTraffic,
}

// KnownStat reports whether s is one of the ten recognized statistics.
func KnownStat(s string) bool {
	for _, k := range AllStats {
		if string(k) == s {
			return true
		}
	}
	return false
}

// AlertStatus is the direction of an anomaly alarm.
type AlertStatus string

const (
	StatusDownAlert AlertStatus = "DOWN_ALERT"
	StatusUpAlert   AlertStatus = "UP_ALERT"
)

// Type discriminates the two message variants on the wire.
type Type string

const (
	TypeAlarm Type = "alarm"
	TypeData  Type = "data"
)

// Message is the tagged union published on the bus: exactly one of
// AlarmMessage or DataMessage, dispatched on with a type switch by
// every consumer.
type Message interface {
	Kind() Type
}

// AlarmMessage is an anomaly event raised by a probe.
type AlarmMessage struct {
	Time        int64       `json:"time"`
	Name        string      `json:"name"`
	Series      string      `json:"series"`
	Stat        Stat        `json:"stat"`
	Status      AlertStatus `json:"status"`
	Value       float64     `json:"value"`
	Probability float64     `json:"probability"`
	Code        int32       `json:"code"`
	Type        Type        `json:"type"`
}

// Kind implements Message.
func (AlarmMessage) Kind() Type { return TypeAlarm }

// DataMessage is a periodic snapshot of current per-stat values. Each
// statistic contributes up to three nullable fields: the raw value
// and its down/up SPOT thresholds.
type DataMessage struct {
	Time   int64  `json:"time"`
	Name   string `json:"name"`
	Series string `json:"series"`
	Type   Type   `json:"type"`

	AvgPktSize     *float64 `json:"AVG_PKT_SIZE,omitempty"`
	AvgPktSizeDown *float64 `json:"AVG_PKT_SIZE_DOWN,omitempty"`
	AvgPktSizeUp   *float64 `json:"AVG_PKT_SIZE_UP,omitempty"`

	Perf     *float64 `json:"PERF,omitempty"`
	PerfDown *float64 `json:"PERF_DOWN,omitempty"`
	PerfUp   *float64 `json:"PERF_UP,omitempty"`

	RAck     *float64 `json:"R_ACK,omitempty"`
	RAckDown *float64 `json:"R_ACK_DOWN,omitempty"`
	RAckUp   *float64 `json:"R_ACK_UP,omitempty"`

	RArp     *float64 `json:"R_ARP,omitempty"`
	RArpDown *float64 `json:"R_ARP_DOWN,omitempty"`
	RArpUp   *float64 `json:"R_ARP_UP,omitempty"`

	RDstSrc     *float64 `json:"R_DST_SRC,omitempty"`
	RDstSrcDown *float64 `json:"R_DST_SRC_DOWN,omitempty"`
	RDstSrcUp   *float64 `json:"R_DST_SRC_UP,omitempty"`

	RDstSrcPort     *float64 `json:"R_DST_SRC_PORT,omitempty"`
	RDstSrcPortDown *float64 `json:"R_DST_SRC_PORT_DOWN,omitempty"`
	RDstSrcPortUp   *float64 `json:"R_DST_SRC_PORT_UP,omitempty"`

	RIcmp     *float64 `json:"R_ICMP,omitempty"`
	RIcmpDown *float64 `json:"R_ICMP_DOWN,omitempty"`
	RIcmpUp   *float64 `json:"R_ICMP_UP,omitempty"`

	RIp     *float64 `json:"R_IP,omitempty"`
	RIpDown *float64 `json:"R_IP_DOWN,omitempty"`
	RIpUp   *float64 `json:"R_IP_UP,omitempty"`

	RSyn     *float64 `json:"R_SYN,omitempty"`
	RSynDown *float64 `json:"R_SYN_DOWN,omitempty"`
	RSynUp   *float64 `json:"R_SYN_UP,omitempty"`

	Traffic     *float64 `json:"TRAFFIC,omitempty"`
	TrafficDown *float64 `json:"TRAFFIC_DOWN,omitempty"`
	TrafficUp   *float64 `json:"TRAFFIC_UP,omitempty"`
}

// Kind implements Message.
func (DataMessage) Kind() Type { return TypeData }

// ToJSON serializes once; callers (the dispatcher) share the result
// across every fan-out send rather than re-marshaling per webhook.
func ToJSON(m Message) ([]byte, error) {
	return json.Marshal(m)
}
