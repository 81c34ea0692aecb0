// Package printer implements the optional message consumer that logs
// every alarm and data message, enabled by the "show messages" flag.
package printer

import (
	"log"

	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/messages"
	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// Start subscribes to b and logs every message until shutdown.
func Start(b *bus.Bus, sig *shutdown.Signal) {
	go run(b, sig)
}

func run(b *bus.Bus, sig *shutdown.Signal) {
	sub := b.Subscribe()
	obs := sig.Observe()
	defer obs.Release()
	defer sub.Unsubscribe()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return
			}
			print(msg)
		case <-obs.Done():
			return
		}
	}
}

func print(msg messages.Message) {
	switch m := msg.(type) {
	case messages.AlarmMessage:
		log.Printf("ALARM %s %s %s value=%.4f probability=%.4f", m.Name, m.Stat, m.Status, m.Value, m.Probability)
	case messages.DataMessage:
		log.Printf("DATA  %s %s", m.Name, m.Series)
	}
}
