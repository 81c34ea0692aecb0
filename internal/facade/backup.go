package facade

import (
	"fmt"
	"log"
	"time"

	"github.com/sifis-home/netspot-control/internal/store"
	"github.com/sifis-home/netspot-control/internal/storebackup"
)

// BackupDB checkpoints the WAL back into the main database file, then
// exports the live SQLite file into destDir, returning the backup's
// path. The store stays open for the duration: a write committed
// between the checkpoint and the copy can still interleave, but this
// control plane's hour of retention makes an occasional stale row an
// acceptable cost for not pausing probes mid-backup.
func (f *Facade) BackupDB(destDir string) (string, error) {
	if err := f.currentStore().Checkpoint(); err != nil {
		return "", err
	}
	return storebackup.Export(f.cfg.DBPath, destDir, time.Now())
}

// RestoreDB retires the current writer, closes the store, overwrites
// the database file from backupPath, and reopens a fresh store with
// its own writer subscription, then reloads the webhook dispatcher's
// snapshot from the restored rows. Probes are untouched: the
// supervisor keeps the configurations it already holds.
func (f *Facade) RestoreDB(backupPath string) error {
	f.storeMu.Lock()
	defer f.storeMu.Unlock()

	oldStore := f.store
	f.writerSub.Unsubscribe()

	if err := oldStore.Close(); err != nil {
		log.Printf("⚠️  restore: error closing store before overwrite: %v", err)
	}

	if err := storebackup.Import(backupPath, f.cfg.DBPath); err != nil {
		reopened, reopenErr := store.Open(f.cfg.DBPath)
		if reopenErr != nil {
			return fmt.Errorf("restore: import failed (%w) and reopening original store also failed: %v", err, reopenErr)
		}
		f.store = reopened
		f.writerSub = reopened.StartWriter(f.bus, f.sig)
		return fmt.Errorf("restore: %w", err)
	}

	newStore, err := store.Open(f.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("restore: reopen database after import: %w", err)
	}
	f.store = newStore
	f.writerSub = newStore.StartWriter(f.bus, f.sig)

	webhooks, err := newStore.GetWebhooks()
	if err != nil {
		return fmt.Errorf("restore: load webhooks from restored database: %w", err)
	}
	f.dispatcher.Update(webhooks)

	log.Printf("✅ restored database from %s", backupPath)
	return nil
}
