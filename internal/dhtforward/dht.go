// Package dhtforward optionally relays alarm messages to a remote
// distributed-hash-table gateway, used to publish anomaly alarms into
// a SIFIS-Home-style DHT topic.
package dhtforward

import (
	"bytes"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

const (
	topicName = "SIFIS:Netspot_Alarm"
	topicUUID = "Netspot_Alarm"
	description = "Netspot Anomaly Alarm"
)

type value struct {
	Description string                  `json:"description"`
	Addresses   []string                `json:"addresses"`
	Alarm       messages.AlarmMessage   `json:"alarm"`
}

type requestPostTopicUUID struct {
	TopicName string `json:"topic_name"`
	TopicUUID string `json:"topic_uuid"`
	Value     value  `json:"value"`
}

type envelope struct {
	RequestPostTopicUUID requestPostTopicUUID `json:"RequestPostTopicUUID"`
}

// Forwarder POSTs every alarm message (data messages are ignored) to
// a fixed HTTP endpoint wrapped in the DHT's envelope shape.
type Forwarder struct {
	url       string
	addresses []string
	client    *http.Client
}

// New constructs a forwarder, subscribes it to b, and starts its
// background loop. addresses should be this host's non-loopback,
// non-multicast IPs, gathered once at facade construction.
func New(url string, addresses []string, b *bus.Bus, sig *shutdown.Signal) *Forwarder {
	f := &Forwarder{url: url, addresses: addresses, client: &http.Client{Timeout: 10 * time.Second}}
	sub := b.Subscribe()
	obs := sig.Observe()
	go f.run(sub, obs)
	return f
}

func (f *Forwarder) run(sub *bus.Subscription, obs *shutdown.Observer) {
	defer obs.Release()
	defer sub.Unsubscribe()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			alarm, isAlarm := msg.(messages.AlarmMessage)
			if !isAlarm {
				continue
			}
			f.send(alarm)
		case <-obs.Done():
			return
		}
	}
}

func (f *Forwarder) send(alarm messages.AlarmMessage) {
	body := envelope{RequestPostTopicUUID: requestPostTopicUUID{
		TopicName: topicName,
		TopicUUID: topicUUID,
		Value: value{
			Description: description,
			Addresses:   f.addresses,
			Alarm:       alarm,
		},
	}}

	raw, err := json.Marshal(body)
	if err != nil {
		log.Printf("dht forwarder: could not serialize alarm: %v", err)
		return
	}

	resp, err := f.client.Post(f.url, "application/json", bytes.NewReader(raw))
	if err != nil {
		log.Printf("dht forwarder: send failed: %v", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("dht forwarder: host responded with status %d", resp.StatusCode)
	}
}

// HostAddresses enumerates this host's non-loopback, non-multicast,
// non-unspecified IP addresses, used both for the DHT envelope and
// available to operators via diagnostics.
func HostAddresses() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsMulticast() || ip.IsUnspecified() {
			continue
		}
		out = append(out, ip.String())
	}
	return out, nil
}
