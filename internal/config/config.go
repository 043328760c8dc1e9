package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig `yaml:"server"`
	Store   StoreConfig  `yaml:"store"`
	Loader  LoaderConfig `yaml:"loader"`
	Tickers []Ticker     `yaml:"tickers"`
	Log     LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port       string `yaml:"port"`
	Theme      string `yaml:"theme"`       // "dark" or "light"
	SessionTTL string `yaml:"session_ttl"` // e.g. "30m"
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type LoaderConfig struct {
	Files []string `yaml:"files"`
}

// Ticker is one selectable security; Table names its metrics table.
type Ticker struct {
	Label string `yaml:"label" json:"label"`
	Table string `yaml:"table" json:"value"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "10000",
			Theme:      "dark",
			SessionTTL: "30m",
		},
		Store: StoreConfig{Path: "newstock_data.db"},
		Loader: LoaderConfig{Files: []string{
			"TSMC_2330_metrics.csv",
			"INDEX_TWII_metrics.csv",
			"ETF_0050_metrics.csv",
		}},
		Tickers: []Ticker{
			{Label: "TSMC (2330)", Table: "TSMC_2330_metrics"},
			{Label: "Yuanta Taiwan 50 (0050)", Table: "ETF_0050_metrics"},
			{Label: "TAIEX", Table: "INDEX_TWII_metrics"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if any,
// otherwise $STOCKDASH_CONFIG), then environment variables. A .env file in the
// working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("STOCKDASH_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Theme = getEnv("THEME", c.Server.Theme)
	c.Server.SessionTTL = getEnv("SESSION_TTL", c.Server.SessionTTL)
	c.Store.Path = getEnv("DB_PATH", c.Store.Path)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port is required")
	}
	switch c.Server.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("server.theme must be dark or light, got %q", c.Server.Theme)
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	for i, t := range c.Tickers {
		if t.Table == "" {
			return fmt.Errorf("tickers[%d].table is required", i)
		}
	}
	return nil
}

func (c *Config) SessionTTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("server.session_ttl: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("server.session_ttl must be positive")
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
