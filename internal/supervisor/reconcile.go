package supervisor

import (
	"log"
	"time"

	"github.com/sifis-home/netspot-control/internal/shutdown"
)

// ReconcileInterval is how often StartReconciler checks for crashed
// children.
const ReconcileInterval = 30 * time.Second

// StartReconciler runs a background loop that detects probes whose
// child process exited on its own (crash, killed externally) and
// clears their process handle so status queries and subsequent starts
// see them as stopped rather than phantom-running.
func (s *Supervisor) StartReconciler(sig *shutdown.Signal) {
	go s.reconcileLoop(sig)
}

func (s *Supervisor) reconcileLoop(sig *shutdown.Signal) {
	obs := sig.Observe()
	defer obs.Release()

	ticker := time.NewTicker(ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcileOnce()
		case <-obs.Done():
			return
		}
	}
}

func (s *Supervisor) reconcileOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.probes {
		if p.process == nil {
			continue
		}
		if !p.process.alive() {
			log.Printf("supervisor: probe %d's process exited unexpectedly", id)
			p.process = nil
		}
	}
}
