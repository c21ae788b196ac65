package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Transport TransportConfig `yaml:"transport" toml:"transport"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	DB        DBConfig        `yaml:"db" toml:"db"`
	Log       LogConfig       `yaml:"log" toml:"log"`
	Store     StoreConfig     `yaml:"store" toml:"store"`
	Edge      EdgeConfig      `yaml:"edge" toml:"edge"`
	Report    ReportConfig    `yaml:"report" toml:"report"`
	Team      TeamConfig      `yaml:"team" toml:"team"`
}

type ServerConfig struct {
	Host string `yaml:"host" toml:"host"`
	Port int    `yaml:"port" toml:"port"`
}

type TransportConfig struct {
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode" toml:"mode"`
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

type DBConfig struct {
	Path string `yaml:"path" toml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// StoreConfig selects where events and the roster live. Workspaces and api
// keys always stay in sqlite.
type StoreConfig struct {
	Backend   string `yaml:"backend" toml:"backend"`
	ProjectID string `yaml:"project_id" toml:"project_id"`
}

type EdgeConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	APIKey  string `yaml:"api_key" toml:"api_key"`
	// TimeoutMS bounds a single device request.
	TimeoutMS int `yaml:"timeout_ms" toml:"timeout_ms"`
}

type ReportConfig struct {
	PollIntervalMS       int `yaml:"poll_interval_ms" toml:"poll_interval_ms"`
	MaxPolls             int `yaml:"max_polls" toml:"max_polls"`
	MaxTransientFailures int `yaml:"max_transient_failures" toml:"max_transient_failures"`
	CancelTimeoutMS      int `yaml:"cancel_timeout_ms" toml:"cancel_timeout_ms"`
}

type TeamConfig struct {
	// DefaultID is used when auth is disabled.
	DefaultID string `yaml:"default_id" toml:"default_id"`
	// Timezone names the IANA zone of clock labels and event times.
	Timezone string `yaml:"timezone" toml:"timezone"`
}

// Location resolves Timezone, falling back to UTC.
func (c TeamConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

// EdgeTimeout returns the device request timeout.
func (c EdgeConfig) EdgeTimeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// PollInterval returns the report poll interval.
func (c ReportConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// CancelTimeout returns the deadline of the best-effort cancel call.
func (c ReportConfig) CancelTimeout() time.Duration {
	return time.Duration(c.CancelTimeoutMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Auth: AuthConfig{
			Enabled: true,
		},
		DB: DBConfig{
			Path: "edgeline.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Edge: EdgeConfig{
			BaseURL:   "http://192.168.4.1:8080",
			TimeoutMS: 10_000,
		},
		Report: ReportConfig{
			PollIntervalMS:       3500,
			MaxPolls:             200,
			MaxTransientFailures: 3,
			CancelTimeoutMS:      10_000,
		},
		Team: TeamConfig{
			DefaultID: "default",
			Timezone:  "UTC",
		},
	}
}

// Load reads configuration from an optional YAML or TOML file and
// environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("EDGELINE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric settings.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Store.Backend {
	case BackendSQLite:
	case BackendFirestore:
		if c.Store.ProjectID == "" {
			return fmt.Errorf("store.project_id required for firestore backend")
		}
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	if c.Report.PollIntervalMS <= 0 || c.Report.MaxPolls <= 0 {
		return fmt.Errorf("report poll interval and max polls must be positive")
	}
	if _, err := c.Team.Location(); err != nil {
		return fmt.Errorf("invalid team timezone %q: %w", c.Team.Timezone, err)
	}
	if c.Report.MaxTransientFailures < 0 {
		return fmt.Errorf("report max transient failures must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("EDGELINE_SERVER_HOST", &cfg.Server.Host)
	if err := setInt("EDGELINE_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	setString("EDGELINE_TRANSPORT", &cfg.Transport.Mode)
	if v := os.Getenv("EDGELINE_AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid EDGELINE_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	setString("EDGELINE_DB_PATH", &cfg.DB.Path)
	setString("EDGELINE_LOG_LEVEL", &cfg.Log.Level)
	setString("EDGELINE_STORE_BACKEND", &cfg.Store.Backend)
	setString("EDGELINE_FIRESTORE_PROJECT", &cfg.Store.ProjectID)
	setString("EDGELINE_EDGE_URL", &cfg.Edge.BaseURL)
	setString("EDGELINE_EDGE_API_KEY", &cfg.Edge.APIKey)
	if err := setInt("EDGELINE_EDGE_TIMEOUT_MS", &cfg.Edge.TimeoutMS); err != nil {
		return err
	}
	if err := setInt("EDGELINE_REPORT_POLL_INTERVAL_MS", &cfg.Report.PollIntervalMS); err != nil {
		return err
	}
	if err := setInt("EDGELINE_REPORT_MAX_POLLS", &cfg.Report.MaxPolls); err != nil {
		return err
	}
	setString("EDGELINE_TEAM_ID", &cfg.Team.DefaultID)
	setString("EDGELINE_TEAM_TZ", &cfg.Team.Timezone)
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("parse config file: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
