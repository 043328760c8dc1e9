package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "10000", cfg.Server.Port)
	assert.Equal(t, "dark", cfg.Server.Theme)
	assert.Equal(t, "newstock_data.db", cfg.Store.Path)
	assert.Len(t, cfg.Loader.Files, 3)
	assert.Len(t, cfg.Tickers, 3)
	assert.NoError(t, cfg.Validate())

	ttl, err := cfg.SessionTTL()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty port", func(c *Config) { c.Server.Port = " " }, "server.port is required"},
		{"bad theme", func(c *Config) { c.Server.Theme = "neon" }, "server.theme must be dark or light"},
		{"bad ttl", func(c *Config) { c.Server.SessionTTL = "soon" }, "server.session_ttl"},
		{"zero ttl", func(c *Config) { c.Server.SessionTTL = "0s" }, "must be positive"},
		{"no db", func(c *Config) { c.Store.Path = "" }, "store.path is required"},
		{"ticker without table", func(c *Config) { c.Tickers = []Ticker{{Label: "x"}} }, "tickers[0].table"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stockdash.yaml")
	yml := `
server:
  port: "8081"
  theme: light
store:
  path: /tmp/x.db
loader:
  files: [a.csv, b.xlsx]
tickers:
  - label: Alpha
    table: A
  - label: Beta
    table: B
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg := Default()
	require.NoError(t, cfg.mergeFile(path))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, "light", cfg.Server.Theme)
	assert.Equal(t, "30m", cfg.Server.SessionTTL, "unset keys keep defaults")
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
	assert.Equal(t, []string{"a.csv", "b.xlsx"}, cfg.Loader.Files)
	assert.Equal(t, []Ticker{{Label: "Alpha", Table: "A"}, {Label: "Beta", Table: "B"}}, cfg.Tickers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STOCKDASH_CONFIG", "")
	t.Setenv("PORT", "9999")
	t.Setenv("DB_PATH", "other.db")
	t.Setenv("THEME", "light")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "other.db", cfg.Store.Path)
	assert.Equal(t, "light", cfg.Server.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnvBeatsFile(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("cfg.yaml", []byte("server:\n  port: \"7000\"\n"), 0o644))
	t.Setenv("PORT", "7001")

	cfg, err := Load("cfg.yaml")
	require.NoError(t, err)
	assert.Equal(t, "7001", cfg.Server.Port)
}
