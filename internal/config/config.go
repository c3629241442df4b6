package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/claude/mapty/internal/form"
	"github.com/claude/mapty/internal/mapview"
	"github.com/claude/mapty/internal/storage"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Map       MapConfig       `yaml:"map"`
	Form      FormConfig      `yaml:"form"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"` // sqlite file or badger directory
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MapConfig struct {
	Zoom        int           `yaml:"zoom"`
	TileURL     string        `yaml:"tile_url"`
	Attribution string        `yaml:"attribution"`
	PanDuration time.Duration `yaml:"pan_duration"`
}

type FormConfig struct {
	RestoreDelay time.Duration `yaml:"restore_delay"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	m := mapview.DefaultOptions()
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Backend: BackendSQLite, Path: "data/mapty.db"},
		Map: MapConfig{
			Zoom:        m.Zoom,
			TileURL:     m.TileURL,
			Attribution: m.Attribution,
			PanDuration: m.PanDuration,
		},
		Form:      FormConfig{RestoreDelay: form.DefaultRestoreDelay},
		Tailscale: TailscaleConfig{Hostname: "mapty", StateDir: "tsnet-state"},
		Metrics:   MetricsConfig{Enabled: true},
		Log:       LogConfig{Level: "info"},
	}
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Options returns the map view options.
func (m MapConfig) Options() mapview.Options {
	opts := mapview.DefaultOptions()
	opts.Zoom = m.Zoom
	opts.TileURL = m.TileURL
	opts.Attribution = m.Attribution
	opts.PanDuration = m.PanDuration
	return opts
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Open connects the configured storage backend. Postgres migrations are
// applied first.
func (s StorageConfig) Open(ctx context.Context) (storage.Slot, error) {
	switch s.Backend {
	case BackendSQLite:
		return storage.OpenSQLite(s.Path)
	case BackendPostgres:
		dsn := s.Database.DSN()
		if err := storage.RunMigrations(dsn); err != nil {
			return nil, err
		}
		return storage.New(ctx, dsn)
	case BackendBadger:
		return storage.OpenBadger(s.Path)
	case BackendRedis:
		return storage.OpenRedis(ctx, s.Redis.Addr, s.Redis.Password, s.Redis.DB)
	case BackendMemory:
		return storage.NewMemorySlot(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file leaves the defaults in place.
// Env vars use the prefix MAPTY_ and underscore-separated paths:
//
//	MAPTY_SERVER_HOST, MAPTY_SERVER_PORT,
//	MAPTY_STORAGE_BACKEND, MAPTY_STORAGE_PATH,
//	MAPTY_DB_HOST, MAPTY_DB_PORT, MAPTY_DB_NAME,
//	MAPTY_DB_USER, MAPTY_DB_PASSWORD, MAPTY_DB_SSLMODE,
//	MAPTY_REDIS_ADDR, MAPTY_REDIS_PASSWORD, MAPTY_REDIS_DB,
//	MAPTY_AUTH_API_KEY, MAPTY_TAILSCALE_ENABLED, MAPTY_TAILSCALE_HOSTNAME,
//	MAPTY_METRICS_ENABLED, MAPTY_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("MAPTY_SERVER_HOST", &cfg.Server.Host)
	num("MAPTY_SERVER_PORT", &cfg.Server.Port)
	str("MAPTY_STORAGE_BACKEND", &cfg.Storage.Backend)
	str("MAPTY_STORAGE_PATH", &cfg.Storage.Path)
	str("MAPTY_DB_HOST", &cfg.Storage.Database.Host)
	num("MAPTY_DB_PORT", &cfg.Storage.Database.Port)
	str("MAPTY_DB_NAME", &cfg.Storage.Database.Name)
	str("MAPTY_DB_USER", &cfg.Storage.Database.User)
	str("MAPTY_DB_PASSWORD", &cfg.Storage.Database.Password)
	str("MAPTY_DB_SSLMODE", &cfg.Storage.Database.SSLMode)
	str("MAPTY_REDIS_ADDR", &cfg.Storage.Redis.Addr)
	str("MAPTY_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	num("MAPTY_REDIS_DB", &cfg.Storage.Redis.DB)
	str("MAPTY_AUTH_API_KEY", &cfg.Auth.APIKey)
	flag("MAPTY_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	str("MAPTY_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	flag("MAPTY_METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("MAPTY_LOG_LEVEL", &cfg.Log.Level)
}

func (c *Config) validate() error {
	if !c.Tailscale.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendSQLite, BackendBadger:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case BackendPostgres:
		d := c.Storage.Database
		if d.Host == "" {
			return fmt.Errorf("storage.database.host is required")
		}
		if d.Port == 0 {
			return fmt.Errorf("storage.database.port is required")
		}
		if d.Name == "" {
			return fmt.Errorf("storage.database.name is required")
		}
		if d.User == "" {
			return fmt.Errorf("storage.database.user is required")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend %q is not one of sqlite, postgres, badger, redis, memory", c.Storage.Backend)
	}

	if c.Map.Zoom < 1 || c.Map.Zoom > 19 {
		return fmt.Errorf("map.zoom must be between 1 and 19")
	}
	if c.Map.TileURL == "" {
		return fmt.Errorf("map.tile_url is required")
	}
	if c.Map.PanDuration < 0 {
		return fmt.Errorf("map.pan_duration cannot be negative")
	}
	if c.Form.RestoreDelay < 0 {
		return fmt.Errorf("form.restore_delay cannot be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}
