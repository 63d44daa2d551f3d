package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  addr: ":9000"
  ws_ping_interval: 30s
storage:
  driver: sqlite
  sqlite_path: /tmp/from-file.db
pagination:
  feed_limit: 15
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, env(map[string]string{
		"PORT":        "7000",
		"SQLITE_PATH": "/tmp/from-env.db",
		"LOG_LEVEL":   "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 30*time.Second, cfg.HTTP.WSPingInterval)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/from-env.db", cfg.Storage.ConnString())
	assert.Equal(t, 15, cfg.Pagination.FeedLimit)
	// Незаданные в файле ключи сохраняют значения по умолчанию
	assert.Equal(t, 20, cfg.Pagination.AccountLimit)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: [unclosed"), 0o600))
	_, err = Load(path, env(nil))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }},
		{"sqlite without path", func(c *Config) { c.Storage.Driver = DriverSQLite; c.Storage.SQLitePath = "" }},
		{"empty addr", func(c *Config) { c.HTTP.Addr = " " }},
		{"zero ping", func(c *Config) { c.HTTP.WSPingInterval = 0 }},
		{"zero limit", func(c *Config) { c.Pagination.FeedLimit = 0 }},
		{"limit over max", func(c *Config) { c.Pagination.AccountLimit = 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg, err := Load("", env(map[string]string{"STORAGE": DriverPostgres, "DATABASE_URL": "postgres://localhost/db"}))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres://localhost/db", cfg.Storage.ConnString())
}
