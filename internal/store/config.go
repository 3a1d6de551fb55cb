package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDataBasePath is used when neither the runtime override nor the
// build-time value is set.
const DefaultDataBasePath = "/data"

// BuildDataBasePath is set at build time:
//
//	go build -ldflags "-X dca-dashboard/internal/store.BuildDataBasePath=https://bot.example/data"
var BuildDataBasePath = ""

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		DataDir         string        `yaml:"data_dir"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Data struct {
		BasePath       string        `yaml:"base_path"`
		Origin         string        `yaml:"origin"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		LogRequests    bool          `yaml:"log_requests"`
	} `yaml:"data"`
	Refresh struct {
		PositionsInterval time.Duration `yaml:"positions_interval"`
		FetchTimeout      time.Duration `yaml:"fetch_timeout"`
		// PageWait bounds how long a page render waits for a pending fetch
		// before showing the loading state.
		PageWait time.Duration `yaml:"page_wait"`
		// StaleAfter is the age past which opening a page re-fetches its data.
		StaleAfter time.Duration `yaml:"stale_after"`
	} `yaml:"refresh"`
	Limits struct {
		DashboardSnapshots int `yaml:"dashboard_snapshots"`
		ChartSnapshots     int `yaml:"chart_snapshots"`
		Transactions       int `yaml:"transactions"`
		Prices             int `yaml:"prices"`
	} `yaml:"limits"`
	Charts struct {
		DefaultRange string `yaml:"default_range"`
		MaxPoints    int    `yaml:"max_points"`
	} `yaml:"charts"`
	Theme struct {
		Default string `yaml:"default"`
	} `yaml:"theme"`
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	if c.Refresh.PositionsInterval != 0 && c.Refresh.PositionsInterval < time.Second {
		return fmt.Errorf("refresh.positions_interval must be at least 1s, got %s", c.Refresh.PositionsInterval)
	}
	if c.Limits.DashboardSnapshots < 0 || c.Limits.ChartSnapshots < 0 || c.Limits.Transactions < 0 || c.Limits.Prices < 0 {
		return errors.New("limits must not be negative")
	}
	switch c.Charts.DefaultRange {
	case "24h", "7d", "30d", "all":
	default:
		return fmt.Errorf("charts.default_range must be '24h', '7d', '30d' or 'all', got '%s'", c.Charts.DefaultRange)
	}
	if c.Charts.MaxPoints <= 0 {
		return fmt.Errorf("charts.max_points must be positive, got %d", c.Charts.MaxPoints)
	}
	if c.Theme.Default != "light" && c.Theme.Default != "dark" {
		return fmt.Errorf("theme.default must be 'light' or 'dark', got '%s'", c.Theme.Default)
	}
	if c.Data.Origin != "" {
		if u, err := url.Parse(c.Data.Origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("data.origin must be an absolute URL, got '%s'", c.Data.Origin)
		}
	}
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadConfig reads path, fills defaults and applies environment overrides.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Data.RequestTimeout == 0 {
		c.Data.RequestTimeout = 10 * time.Second
	}
	if c.Refresh.PositionsInterval == 0 {
		c.Refresh.PositionsInterval = 30 * time.Second
	}
	if c.Refresh.FetchTimeout == 0 {
		c.Refresh.FetchTimeout = 20 * time.Second
	}
	if c.Refresh.PageWait == 0 {
		c.Refresh.PageWait = 2 * time.Second
	}
	if c.Refresh.StaleAfter == 0 {
		c.Refresh.StaleAfter = 5 * time.Second
	}
	if c.Limits.DashboardSnapshots == 0 {
		c.Limits.DashboardSnapshots = 100
	}
	if c.Limits.Transactions == 0 {
		c.Limits.Transactions = 1000
	}
	if c.Limits.Prices == 0 {
		c.Limits.Prices = 10000
	}
	if c.Charts.DefaultRange == "" {
		c.Charts.DefaultRange = "30d"
	}
	if c.Charts.MaxPoints == 0 {
		c.Charts.MaxPoints = 1000
	}
	if c.Theme.Default == "" {
		c.Theme.Default = "light"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DCA_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DCA_DATA_DIR"); v != "" {
		c.Server.DataDir = v
	}
	if v := os.Getenv("DCA_DATA_BASE_PATH"); v != "" {
		c.Data.BasePath = v
	}
}

// ResolveDataBasePath picks the runtime override, then the build-time value,
// then DefaultDataBasePath.
func (c *Config) ResolveDataBasePath() string {
	switch {
	case c.Data.BasePath != "":
		return c.Data.BasePath
	case BuildDataBasePath != "":
		return BuildDataBasePath
	default:
		return DefaultDataBasePath
	}
}

// DataURL is the absolute URL bot files are fetched from. A base path with
// no scheme is resolved against data.origin, or against the dashboard's own
// listen address.
func (c *Config) DataURL() string {
	base := c.ResolveDataBasePath()
	if u, err := url.Parse(base); err == nil && u.Scheme != "" {
		return strings.TrimRight(base, "/")
	}
	origin := c.Data.Origin
	if origin == "" {
		origin = "http://" + loopback(c.Server.Addr)
	}
	return strings.TrimRight(origin, "/") + "/" + strings.Trim(base, "/")
}

func loopback(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "127.0.0.1" + addr
	}
	return addr
}

// ConfigPath returns DCA_CONFIG or config.yaml.
func ConfigPath() string {
	if v := os.Getenv("DCA_CONFIG"); v != "" {
		return v
	}
	return "config.yaml"
}
