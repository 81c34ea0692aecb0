package webhook

import (
	"bytes"
	"log"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// tokenPattern matches a valid RFC 7230 header field name.
var tokenPattern = regexp.MustCompile(`^[!#$%&'*+\-.^_` + "`" + `|~0-9A-Za-z]+$`)

func validHeaderName(name string) bool {
	return name != "" && tokenPattern.MatchString(name)
}

func validHeaderValue(value string) bool {
	for _, r := range value {
		if r == '\r' || r == '\n' || r == 0 {
			return false
		}
	}
	return true
}

// Dispatcher owns the current webhook set and fans out a send attempt
// per matching webhook for every bus message.
type Dispatcher struct {
	mu       sync.RWMutex
	webhooks map[int]Webhook

	bus    *bus.Bus
	sig    *shutdown.Signal
	client *http.Client
}

// New constructs a dispatcher, subscribes it to b, and starts its
// background fan-out loop. Construct dispatchers before any producer
// publishes so the initial snapshot is never missed.
func New(b *bus.Bus, sig *shutdown.Signal, initial map[int]Webhook) *Dispatcher {
	d := &Dispatcher{
		webhooks: cloneMap(initial),
		bus:      b,
		sig:      sig,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	sub := b.Subscribe()
	obs := sig.Observe()
	go d.run(sub, obs)
	return d
}

// Update atomically replaces the webhook snapshot, called whenever the
// store's webhook rows change.
func (d *Dispatcher) Update(webhooks map[int]Webhook) {
	d.mu.Lock()
	d.webhooks = cloneMap(webhooks)
	d.mu.Unlock()
}

func cloneMap(in map[int]Webhook) map[int]Webhook {
	out := make(map[int]Webhook, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (d *Dispatcher) run(sub *bus.Subscription, obs *shutdown.Observer) {
	defer obs.Release()
	defer sub.Unsubscribe()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			d.fanOut(msg)
		case <-obs.Done():
			return
		}
	}
}

func (d *Dispatcher) fanOut(msg messages.Message) {
	payload, err := messages.ToJSON(msg)
	if err != nil {
		log.Printf("webhook dispatcher: could not serialize message: %v", err)
		return
	}

	d.mu.RLock()
	snapshot := cloneMap(d.webhooks)
	d.mu.RUnlock()

	for id, wh := range snapshot {
		if !matches(wh.StatsType, msg.Kind()) {
			continue
		}
		obs := d.sig.Observe()
		go d.send(obs, id, wh, payload)
	}
}

func matches(filter StatsType, kind messages.Type) bool {
	switch filter {
	case StatsBoth:
		return true
	case StatsAlarms:
		return kind == messages.TypeAlarm
	case StatsData:
		return kind == messages.TypeData
	default:
		return false
	}
}

func (d *Dispatcher) send(obs *shutdown.Observer, id int, wh Webhook, payload []byte) {
	defer obs.Release()

	// deliveryID correlates one send attempt across our own logs and
	// whatever the receiver logs on their end; there is no delivery
	// retry here, so this is a hint, not an idempotency key.
	deliveryID := uuid.New().String()

	req, err := http.NewRequest(string(wh.Method), wh.Address, bytes.NewReader(payload))
	if err != nil {
		log.Printf("webhook(%d) %s: could not build request: %v", id, wh.Name, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Netspot-Delivery", deliveryID)
	for key, value := range wh.Headers {
		if !validHeaderName(key) || !validHeaderValue(value) {
			log.Printf("webhook(%d) %s: invalid header name=%q value=%q, skipped", id, wh.Name, key, value)
			continue
		}
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("webhook(%d) %s delivery=%s: send failed: %v", id, wh.Name, deliveryID, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Printf("webhook(%d) %s delivery=%s: host responded with status %d", id, wh.Name, deliveryID, resp.StatusCode)
	}
}
