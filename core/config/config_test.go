package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "https://app.omie.com.br/api/v1", cfg.Omie.BaseURL)
	assert.Equal(t, 3, cfg.Reconcile.FetchAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Reconcile.FetchBackoff)
	assert.Equal(t, time.Duration(0), cfg.Scheduler.Interval)
	assert.False(t, cfg.Storage.ArchiveReports)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "device-manager", cfg.Log.Service)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "OMIE_APP_KEY=key-1\nOMIE_APP_SECRET=secret-1\nRECONCILE_WORKERS=4\nSCHEDULER_INTERVAL=15m\nDATABASE_DRIVER=sqlite\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))

	keys := []string{"OMIE_APP_KEY", "OMIE_APP_SECRET", "RECONCILE_WORKERS", "SCHEDULER_INTERVAL", "DATABASE_DRIVER"}
	t.Cleanup(func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "key-1", cfg.Omie.AppKey)
	assert.Equal(t, "secret-1", cfg.Omie.AppSecret)
	assert.Equal(t, 4, cfg.Reconcile.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}
