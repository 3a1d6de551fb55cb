package store

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
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Refresh.PositionsInterval)
	assert.Equal(t, 100, cfg.Limits.DashboardSnapshots)
	assert.Zero(t, cfg.Limits.ChartSnapshots, "charts read every snapshot")
	assert.Equal(t, 1000, cfg.Limits.Transactions)
	assert.Equal(t, 10000, cfg.Limits.Prices)
	assert.Equal(t, "30d", cfg.Charts.DefaultRange)
	assert.Equal(t, "light", cfg.Theme.Default)
}

func TestLoadConfigFromYAML(t *testing.T) {
	p := writeConfig(t, `
server:
  addr: ":9000"
  data_dir: ./bot-data
data:
  base_path: /files
  origin: http://bot.internal:8000
refresh:
  positions_interval: 1m
charts:
  default_range: 7d
  max_points: 200
theme:
  default: dark
`)
	cfg, err := LoadConfig(p)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "./bot-data", cfg.Server.DataDir)
	assert.Equal(t, time.Minute, cfg.Refresh.PositionsInterval)
	assert.Equal(t, 200, cfg.Charts.MaxPoints)
	assert.Equal(t, "http://bot.internal:8000/files", cfg.DataURL())
}

func TestLoadConfigInvalid(t *testing.T) {
	p := writeConfig(t, "charts:\n  default_range: 90d\n")
	_, err := LoadConfig(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "charts.default_range")

	p = writeConfig(t, "server: [unclosed\n")
	_, err = LoadConfig(p)
	require.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DCA_ADDR", ":7070")
	t.Setenv("DCA_DATA_BASE_PATH", "https://cdn.example.com/bot/")
	t.Setenv("DCA_DATA_DIR", "/srv/bot")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "/srv/bot", cfg.Server.DataDir)
	assert.Equal(t, "https://cdn.example.com/bot", cfg.DataURL())
}

func TestResolveDataBasePathPriority(t *testing.T) {
	prev := BuildDataBasePath
	t.Cleanup(func() { BuildDataBasePath = prev })

	cfg := Default()
	BuildDataBasePath = ""
	assert.Equal(t, DefaultDataBasePath, cfg.ResolveDataBasePath())
	assert.Equal(t, "http://127.0.0.1:8080/data", cfg.DataURL())

	BuildDataBasePath = "/built"
	assert.Equal(t, "/built", cfg.ResolveDataBasePath())

	cfg.Data.BasePath = "/runtime"
	assert.Equal(t, "/runtime", cfg.ResolveDataBasePath())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("DCA_CONFIG", "")
	assert.Equal(t, "config.yaml", ConfigPath())
	t.Setenv("DCA_CONFIG", "/etc/dca.yaml")
	assert.Equal(t, "/etc/dca.yaml", ConfigPath())
}
