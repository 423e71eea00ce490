package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// No config file: defaults apply
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Source.Kind != SourceDirectus {
		t.Errorf("expected default kind directus, got %s", cfg.Source.Kind)
	}
	if cfg.Server.Address() != "127.0.0.1:8080" {
		t.Errorf("expected default address 127.0.0.1:8080, got %s", cfg.Server.Address())
	}
	if cfg.Grid.PageSize != 25 {
		t.Errorf("expected default page size 25, got %d", cfg.Grid.PageSize)
	}
	assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Source.Fields)
	assert.Equal(t, "#d4af37", cfg.Theme.Accent)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configContent := `
source:
  kind: sql
  driver: sqlite3
  dsn: file:test.db
  fetch_limit: 500
server:
  port: 9000
grid:
  page_size: 10
  fallback_empty_on_error: true
cache:
  backend: memory
  ttl: 30s
log:
  format: json
`
	require.NoError(t, os.WriteFile(FileName, []byte(configContent), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, SourceSQL, cfg.Source.Kind)
	assert.Equal(t, "sqlite3", cfg.Source.Driver)
	assert.Equal(t, 500, cfg.Source.FetchLimit)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Grid.PageSize)
	assert.True(t, cfg.Grid.FallbackEmptyOnError)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  kind: file\n  path: data.json\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceFile, cfg.Source.Kind)
	assert.Equal(t, "data.json", cfg.Source.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXPLORER_SOURCE_URL", "https://cms.example.com")
	t.Setenv("EXPLORER_SOURCE_TOKEN", "secret")
	t.Setenv("EXPLORER_GRID_PAGE_SIZE", "50")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://cms.example.com", cfg.Source.URL)
	assert.Equal(t, "secret", cfg.Source.Token)
	assert.Equal(t, 50, cfg.Grid.PageSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad kind", func(c *Config) { c.Source.Kind = "ftp" }},
		{"bad url", func(c *Config) { c.Source.URL = "localhost:8055" }},
		{"bad driver", func(c *Config) { c.Source.Kind = SourceSQL; c.Source.Driver = "oracle"; c.Source.DSN = "x" }},
		{"missing dsn", func(c *Config) { c.Source.Kind = SourceSQL }},
		{"bad mongo uri", func(c *Config) { c.Source.Kind = SourceMongo; c.Source.DSN = "localhost" }},
		{"missing path", func(c *Config) { c.Source.Kind = SourceFile }},
		{"zero fetch limit", func(c *Config) { c.Source.FetchLimit = 0 }},
		{"port range", func(c *Config) { c.Server.Port = 70000 }},
		{"rate limit", func(c *Config) { c.Server.RateLimit = -1 }},
		{"page size", func(c *Config) { c.Grid.PageSize = 0 }},
		{"timezone", func(c *Config) { c.Grid.Timezone = "Mars/Olympus" }},
		{"cache backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := Default()
	cfg.Source.Kind = SourceMongo
	cfg.Source.DSN = "mongodb://localhost:27017/blog"
	cfg.Grid.PageSize = 40

	require.NoError(t, Save(cfg, path, false))
	assert.Error(t, Save(cfg, path, false), "refuses to overwrite")
	require.NoError(t, Save(cfg, path, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceMongo, loaded.Source.Kind)
	assert.Equal(t, "mongodb://localhost:27017/blog", loaded.Source.DSN)
	assert.Equal(t, 40, loaded.Grid.PageSize)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "token")
}
