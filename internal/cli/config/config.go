// Package config loads explorer.yaml and EXPLORER_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory.
const FileName = "explorer.yaml"

// EnvPrefix prefixes environment overrides: source.url → EXPLORER_SOURCE_URL.
const EnvPrefix = "EXPLORER"

// Source kinds.
const (
	SourceDirectus = "directus"
	SourceSQL      = "sql"
	SourceMongo    = "mongo"
	SourceFile     = "file"
)

// Config represents the explorer configuration
type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Server ServerConfig `mapstructure:"server"`
	Grid   GridConfig   `mapstructure:"grid"`
	Theme  ThemeConfig  `mapstructure:"theme"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Log    LogConfig    `mapstructure:"log"`
}

// SourceConfig selects and configures the data source.
type SourceConfig struct {
	Kind string `mapstructure:"kind"`
	// URL is the content API base URL (directus).
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
	// Driver and DSN configure sql sources; DSN doubles as the mongo URI.
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`
	// Path is the JSON document of a file source.
	Path       string        `mapstructure:"path"`
	Fields     []string      `mapstructure:"fields"`
	FetchLimit int           `mapstructure:"fetch_limit"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RateLimit caps /api requests per client per minute; 0 disables it.
	RateLimit int `mapstructure:"rate_limit"`
	// Pprof mounts /debug/pprof.
	Pprof bool `mapstructure:"pprof"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GridConfig holds table settings.
type GridConfig struct {
	PageSize             int    `mapstructure:"page_size"`
	EmptyMessage         string `mapstructure:"empty_message"`
	DateLayout           string `mapstructure:"date_layout"`
	DateTimeLayout       string `mapstructure:"datetime_layout"`
	Timezone             string `mapstructure:"timezone"`
	FallbackEmptyOnError bool   `mapstructure:"fallback_empty_on_error"`
}

// ThemeConfig holds the HTML palette.
type ThemeConfig struct {
	Title      string `mapstructure:"title"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Foreground string `mapstructure:"foreground"`
	Muted      string `mapstructure:"muted"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	Prefix        string        `mapstructure:"prefix"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// LogConfig selects log level and encoding.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.kind", SourceDirectus)
	v.SetDefault("source.url", "http://localhost:8055")
	v.SetDefault("source.token", "")
	v.SetDefault("source.driver", "pgx")
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.database", "")
	v.SetDefault("source.path", "")
	v.SetDefault("source.fields", []string{"*"})
	v.SetDefault("source.fetch_limit", 100)
	v.SetDefault("source.timeout", "15s")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.pprof", false)

	v.SetDefault("grid.page_size", 25)
	v.SetDefault("grid.empty_message", "No data")
	v.SetDefault("grid.date_layout", "2006-01-02")
	v.SetDefault("grid.datetime_layout", "2006-01-02 15:04:05")
	v.SetDefault("grid.timezone", "")
	v.SetDefault("grid.fallback_empty_on_error", false)

	v.SetDefault("theme.title", "Explorer")
	v.SetDefault("theme.accent", "#d4af37")
	v.SetDefault("theme.background", "#000000")
	v.SetDefault("theme.foreground", "#f5f5f5")
	v.SetDefault("theme.muted", "#8a8a8a")

	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.ttl", "1m")
	v.SetDefault("cache.prefix", "explorer:")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not decode: %v", err))
	}
	return &cfg
}

// Load reads path, or explorer.yaml in the working directory when path is
// empty, then applies environment overrides. A missing default file is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save writes cfg to path as YAML. An existing file is only replaced
// when overwrite is set.
func Save(cfg *Config, path string, overwrite bool) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}

	v := viper.New()
	for key, value := range cfg.settings() {
		v.Set(key, value)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// settings flattens cfg into viper keys. Empty secrets and the fields of
// unused source kinds are left out.
func (c *Config) settings() map[string]any {
	s := map[string]any{
		"source.kind":                  c.Source.Kind,
		"source.fetch_limit":           c.Source.FetchLimit,
		"source.timeout":               c.Source.Timeout.String(),
		"server.host":                  c.Server.Host,
		"server.port":                  c.Server.Port,
		"grid.page_size":               c.Grid.PageSize,
		"grid.fallback_empty_on_error": c.Grid.FallbackEmptyOnError,
		"cache.backend":                c.Cache.Backend,
		"cache.ttl":                    c.Cache.TTL.String(),
		"log.level":                    c.Log.Level,
		"log.format":                   c.Log.Format,
		"theme.title":                  c.Theme.Title,
		"theme.accent":                 c.Theme.Accent,
	}
	switch c.Source.Kind {
	case SourceDirectus:
		s["source.url"] = c.Source.URL
		if c.Source.Token != "" {
			s["source.token"] = c.Source.Token
		}
	case SourceSQL:
		s["source.driver"] = c.Source.Driver
		s["source.dsn"] = c.Source.DSN
	case SourceMongo:
		s["source.dsn"] = c.Source.DSN
		if c.Source.Database != "" {
			s["source.database"] = c.Source.Database
		}
	case SourceFile:
		s["source.path"] = c.Source.Path
	}
	if c.Cache.Backend == "redis" {
		s["cache.redis_addr"] = c.Cache.RedisAddr
		s["cache.redis_db"] = c.Cache.RedisDB
	}
	return s
}

var sqlDrivers = map[string]bool{"pgx": true, "postgres": true, "mysql": true, "sqlite3": true}

// Validate checks the configuration
func Validate(cfg *Config) error {
	switch cfg.Source.Kind {
	case SourceDirectus:
		u, err := url.Parse(cfg.Source.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source.url must be an http(s) URL, got: %q", cfg.Source.URL)
		}
	case SourceSQL:
		if !sqlDrivers[cfg.Source.Driver] {
			return fmt.Errorf("source.driver must be one of pgx, postgres, mysql, sqlite3, got: %q", cfg.Source.Driver)
		}
		if cfg.Source.DSN == "" {
			return fmt.Errorf("source.dsn is required for sql sources")
		}
	case SourceMongo:
		if !strings.HasPrefix(cfg.Source.DSN, "mongodb://") && !strings.HasPrefix(cfg.Source.DSN, "mongodb+srv://") {
			return fmt.Errorf("source.dsn must be a mongodb:// URI, got: %q", cfg.Source.DSN)
		}
	case SourceFile:
		if cfg.Source.Path == "" {
			return fmt.Errorf("source.path is required for file sources")
		}
	default:
		return fmt.Errorf("source.kind must be one of directus, sql, mongo, file, got: %q", cfg.Source.Kind)
	}

	if cfg.Source.FetchLimit < 1 {
		return fmt.Errorf("source.fetch_limit must be positive, got: %d", cfg.Source.FetchLimit)
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535, got: %d", cfg.Server.Port)
	}
	if cfg.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got: %d", cfg.Server.RateLimit)
	}
	if cfg.Grid.PageSize < 1 || cfg.Grid.PageSize > 500 {
		return fmt.Errorf("grid.page_size must be between 1 and 500, got: %d", cfg.Grid.PageSize)
	}
	if cfg.Grid.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Grid.Timezone); err != nil {
			return fmt.Errorf("grid.timezone: %w", err)
		}
	}
	switch cfg.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be one of none, memory, redis, got: %q", cfg.Cache.Backend)
	}
	switch cfg.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got: %q", cfg.Log.Format)
	}
	return nil
}
