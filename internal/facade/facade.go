// Package facade wires components A-H together behind the single
// entry point the REST binding calls: construction order matters
// (subscribers before producers start), and Shutdown tears every
// subsystem down in the reverse order construction brought them up.
package facade

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/sifis-home/netspot-control/internal/apierr"
	"github.com/sifis-home/netspot-control/internal/bus"
	"github.com/sifis-home/netspot-control/internal/dhtforward"
	"github.com/sifis-home/netspot-control/internal/netspotcfg"
	"github.com/sifis-home/netspot-control/internal/printer"
	"github.com/sifis-home/netspot-control/internal/shutdown"
	"github.com/sifis-home/netspot-control/internal/store"
	"github.com/sifis-home/netspot-control/internal/supervisor"
	"github.com/sifis-home/netspot-control/internal/webhook"
)

// Config controls which optional consumers the facade spawns.
type Config struct {
	RuntimePath  string
	DBPath       string
	ShowMessages bool
	DHTURL       string
}

// Facade holds every subsystem and is the sole object the REST layer
// (internal/api) talks to.
type Facade struct {
	cfg Config

	sig *shutdown.Signal
	bus *bus.Bus

	// storeMu guards store/writerSub against a concurrent backup or
	// restore swapping them out from under an in-flight query.
	storeMu   sync.RWMutex
	store     *store.Store
	writerSub *bus.Subscription

	dispatcher *webhook.Dispatcher
	supervisor *supervisor.Supervisor
}

// New constructs every subsystem in the order spec §4.I prescribes:
// ensure filesystem layout, create the shutdown signal and bus,
// optionally start the printer, optionally start the DHT forwarder,
// open the store and start its writer, build the webhook dispatcher
// from the persisted webhook set, seed a default configuration if the
// store is empty, build the supervisor from the persisted
// configuration set, then start every configured probe.
func New(cfg Config) (*Facade, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0o755); err != nil {
		return nil, apierr.New(apierr.StartupFatal, fmt.Errorf("create runtime path %s: %w", cfg.RuntimePath, err))
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, apierr.New(apierr.StartupFatal, fmt.Errorf("create db directory: %w", err))
	}

	sig := shutdown.New()
	b := bus.New()

	if cfg.ShowMessages {
		printer.Start(b, sig)
		log.Printf("✅ message printer enabled")
	}

	if cfg.DHTURL != "" {
		addresses, err := dhtforward.HostAddresses()
		if err != nil {
			log.Printf("⚠️  could not enumerate host addresses for DHT forwarder: %v", err)
		}
		dhtforward.New(cfg.DHTURL, addresses, b, sig)
		log.Printf("✅ DHT forwarder enabled, target=%s", cfg.DHTURL)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	writerSub := st.StartWriter(b, sig)
	log.Printf("✅ store opened at %s", cfg.DBPath)

	webhooks, err := st.GetWebhooks()
	if err != nil {
		st.Close()
		return nil, err
	}
	dispatcher := webhook.New(b, sig, webhooks)

	if err := seedDefaultConfiguration(st); err != nil {
		st.Close()
		return nil, err
	}

	configs, err := st.GetConfigurations()
	if err != nil {
		st.Close()
		return nil, err
	}
	sup, err := supervisor.New(cfg.RuntimePath, configs, b, sig)
	if err != nil {
		st.Close()
		return nil, err
	}
	sup.StartReconciler(sig)

	f := &Facade{cfg: cfg, sig: sig, bus: b, store: st, writerSub: writerSub, dispatcher: dispatcher, supervisor: sup}
	sup.StartAll()
	log.Printf("🚀 facade ready, %d configured probe(s)", len(configs))
	return f, nil
}

// seedDefaultConfiguration inserts the documented default
// configuration the first time the store is opened with zero rows.
func seedDefaultConfiguration(st *store.Store) error {
	existing, err := st.GetConfigurations()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	if _, err := st.AddConfiguration(netspotcfg.DefaultProbeConfig()); err != nil {
		return err
	}
	log.Printf("✅ seeded default configuration")
	return nil
}

// currentStore returns the live store under a read lock, safe to call
// concurrently with a backup or restore swapping it out.
func (f *Facade) currentStore() *store.Store {
	f.storeMu.RLock()
	defer f.storeMu.RUnlock()
	return f.store
}

// Shutdown stops every running probe, then publishes the terminal
// shutdown signal and blocks until every subsystem has drained.
func (f *Facade) Shutdown() {
	f.supervisor.StopAll()
	f.sig.Shutdown()
	if err := f.currentStore().Close(); err != nil {
		log.Printf("❌ error closing store: %v", err)
	}
	log.Printf("✅ facade shut down cleanly")
}
