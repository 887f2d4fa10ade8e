// Package config loads the dashboard configuration from an optional YAML
// file and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Backend       BackendConfig       `koanf:"backend"`
	Database      DatabaseConfig      `koanf:"database"`
	Snapshot      SnapshotConfig      `koanf:"snapshot"`
	RabbitMQ      RabbitMQConfig      `koanf:"rabbitmq"`
	Mail          MailConfig          `koanf:"mail"`
	Gemini        GeminiConfig        `koanf:"gemini"`
	Drafter       DrafterConfig       `koanf:"drafter"`
	Fetch         FetchConfig         `koanf:"fetch"`
	Refresh       RefreshConfig       `koanf:"refresh"`
	Conversations ConversationsConfig `koanf:"conversations"`
	Leads         LeadsConfig         `koanf:"leads"`
	Log           LogConfig           `koanf:"log"`
}

type ServerConfig struct {
	Port            int           `koanf:"http_port"`
	CORSOrigins     string        `koanf:"cors_origins"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// BackendConfig points at the REST API that owns leads and messages.
type BackendConfig struct {
	URL   string `koanf:"url"`
	Token string `koanf:"token"`
}

type DatabaseConfig struct {
	URL string `koanf:"url"`
}

type SnapshotConfig struct {
	// Driver is "sqlite" (local file) or "postgres" (shared, uses DATABASE_URL).
	Driver     string `koanf:"driver"`
	SQLitePath string `koanf:"sqlite_path"`
}

type RabbitMQConfig struct {
	URL string `koanf:"url"`
}

type MailConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	From string `koanf:"from"`
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

type DrafterConfig struct {
	// Provider is "backend" (the REST API's /ai/generate) or "gemini".
	Provider      string `koanf:"provider"`
	RatePerMinute int    `koanf:"rate_per_minute"`
}

type FetchConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type RefreshConfig struct {
	Interval    time.Duration `koanf:"interval"`
	AfterCreate time.Duration `koanf:"after_create"`
}

type ConversationsConfig struct {
	OngoingWindow time.Duration `koanf:"ongoing_window"`
}

type LeadsConfig struct {
	ActivityWindow time.Duration `koanf:"activity_window"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

const (
	SnapshotSQLite   = "sqlite"
	SnapshotPostgres = "postgres"

	DrafterBackend = "backend"
	DrafterGemini  = "gemini"
)

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSOrigins == "" {
		cfg.Server.CORSOrigins = "http://localhost:3000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = "http://localhost:8000/api"
	}
	if cfg.Snapshot.Driver == "" {
		cfg.Snapshot.Driver = SnapshotSQLite
	}
	if cfg.Snapshot.SQLitePath == "" {
		cfg.Snapshot.SQLitePath = "dashboard.db"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}
	if cfg.Drafter.Provider == "" {
		cfg.Drafter.Provider = DrafterBackend
		if cfg.Gemini.APIKey != "" {
			cfg.Drafter.Provider = DrafterGemini
		}
	}
	if cfg.Drafter.RatePerMinute == 0 {
		cfg.Drafter.RatePerMinute = 10
	}
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 8 * time.Second
	}
	if cfg.Refresh.Interval == 0 {
		cfg.Refresh.Interval = 30 * time.Second
	}
	if cfg.Refresh.AfterCreate == 0 {
		cfg.Refresh.AfterCreate = 500 * time.Millisecond
	}
	if cfg.Conversations.OngoingWindow == 0 {
		cfg.Conversations.OngoingWindow = 7 * 24 * time.Hour
	}
	if cfg.Leads.ActivityWindow == 0 {
		cfg.Leads.ActivityWindow = 7 * 24 * time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port %d out of range", c.Server.Port))
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q is not an absolute URL", c.Backend.URL))
	}

	switch c.Snapshot.Driver {
	case SnapshotSQLite:
	case SnapshotPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required when snapshot.driver is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshot.driver %q must be sqlite or postgres", c.Snapshot.Driver))
	}

	switch c.Drafter.Provider {
	case DrafterBackend:
	case DrafterGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, errors.New("gemini.api_key is required when drafter.provider is gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("drafter.provider %q must be backend or gemini", c.Drafter.Provider))
	}

	if c.Drafter.RatePerMinute < 0 {
		errs = append(errs, errors.New("drafter.rate_per_minute must not be negative"))
	}
	for name, d := range map[string]time.Duration{
		"fetch.timeout":                c.Fetch.Timeout,
		"refresh.interval":             c.Refresh.Interval,
		"conversations.ongoing_window": c.Conversations.OngoingWindow,
		"leads.activity_window":        c.Leads.ActivityWindow,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	return errors.Join(errs...)
}

// MailEnabled reports whether follow-up emails can be delivered.
func (c *Config) MailEnabled() bool {
	return c.Mail.Host != ""
}

func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
