package facade

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sifis-home/netspot-control/internal/netspotcfg"
	"github.com/sifis-home/netspot-control/internal/supervisor"
)

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	supervisor.NetspotBinary = "true"
	t.Cleanup(func() { supervisor.NetspotBinary = "netspot" })

	dir := t.TempDir()
	f, err := New(Config{RuntimePath: dir, DBPath: filepath.Join(dir, "store.db")})
	require.NoError(t, err)
	t.Cleanup(f.Shutdown)
	return f
}

func TestNewSeedsDefaultConfiguration(t *testing.T) {
	f := newTestFacade(t)

	entries := f.ListProbes()
	require.Len(t, entries, 1)
	assert.Equal(t, "Default configuration", entries[0].Name)
}

func TestAddProbeThenDeleteRemovesItFromBothStoreAndSupervisor(t *testing.T) {
	f := newTestFacade(t)

	cfg := netspotcfg.ProbeConfig{Name: "scratch", Enabled: false}
	id, err := f.AddProbe(cfg)
	require.NoError(t, err)

	before := f.ListProbes()
	require.NoError(t, f.DeleteProbe(id))
	after := f.ListProbes()

	assert.Len(t, after, len(before)-1)
	_, err = f.GetProbeConfig(id)
	assert.Error(t, err)
}

func TestBackupThenRestoreRoundTripsConfiguration(t *testing.T) {
	f := newTestFacade(t)

	cfg := netspotcfg.ProbeConfig{Name: "to-restore", Enabled: false}
	id, err := f.AddProbe(cfg)
	require.NoError(t, err)

	backupDir := t.TempDir()
	backupPath, err := f.BackupDB(backupDir)
	require.NoError(t, err)

	require.NoError(t, f.DeleteProbe(id))
	_, err = f.GetProbeConfig(id)
	assert.Error(t, err)

	require.NoError(t, f.RestoreDB(backupPath))

	restored, err := f.GetProbeConfig(id)
	require.NoError(t, err)
	assert.Equal(t, "to-restore", restored.Name)
}

func TestRestoreFromMissingBackupLeavesFacadeUsable(t *testing.T) {
	f := newTestFacade(t)

	err := f.RestoreDB(filepath.Join(t.TempDir(), "does-not-exist.db"))
	assert.Error(t, err)

	// The facade must still be able to serve requests after a failed
	// restore: RestoreDB reopens the original store on import failure.
	entries := f.ListProbes()
	assert.Len(t, entries, 1)
}
