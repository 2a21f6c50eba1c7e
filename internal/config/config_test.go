package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skrbnik.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
db: /var/lib/skrbnik/ledger.db
addr: 127.0.0.1:9000
block_interval: 2s
metrics: false
`)
	t.Setenv("SKRBNIK_ADDR", ":9100")
	t.Setenv("SKRBNIK_ADMIN", "registrar")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/skrbnik/ledger.db", cfg.DBPath)
	assert.Equal(t, ":9100", cfg.Addr)
	assert.Equal(t, "registrar", cfg.AdminIdentity)
	assert.Equal(t, 2*time.Second, cfg.BlockInterval)
	assert.False(t, cfg.Metrics)
	assert.Empty(t, cfg.LogPath)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "db: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "block_interval: 0s"))
	assert.ErrorContains(t, err, "block interval")

	t.Setenv("SKRBNIK_ADMIN", "null")
	_, err = Load("")
	assert.ErrorContains(t, err, "admin identity")
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("SKRBNIK_BLOCK_INTERVAL", "soon")
	_, err := Load("")
	assert.Error(t, err)
}
