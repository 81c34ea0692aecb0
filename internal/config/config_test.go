package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFileNoFlags(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp", cfg.RuntimePath)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
}

func TestLoadMissingConfigFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/tmp", cfg.RuntimePath)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	cfg, err := Load("", []string{"--runtime-path", "/var/run/netspot", "--dht", "http://dht.example"})
	require.NoError(t, err)
	assert.Equal(t, "/var/run/netspot", cfg.RuntimePath)
	assert.Equal(t, "/var/run/netspot/test.db", cfg.DBPath)
	assert.Equal(t, "http://dht.example", cfg.DHTURL)
}

func TestEnvOverridesDefaultButFlagsWin(t *testing.T) {
	t.Setenv("DB_FILE_PATH", "/env/db.sqlite")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/env/db.sqlite", cfg.DBPath)

	cfg, err = Load("", []string{"--db-path", "/flag/db.sqlite"})
	require.NoError(t, err)
	assert.Equal(t, "/flag/db.sqlite", cfg.DBPath)
}

func TestYAMLFileIsOverlaidOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netspot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dht_url: http://dht.from-yaml\nshow_messages: true\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://dht.from-yaml", cfg.DHTURL)
	assert.True(t, cfg.ShowMessages)
}
