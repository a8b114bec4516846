package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fitpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://api.example.com
  timeout: 3s
storage:
  backend: redis
  session_key: auth
  redis:
    addr: redis:6379
    db: 2
    ttl: 720h
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/users/login", cfg.API.LoginPath, "unset fields keep defaults")
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "auth", cfg.Storage.SessionKey)
	assert.Equal(t, "redis:6379", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, 720*time.Hour, cfg.Storage.Redis.TTL)
	assert.Equal(t, "fitpulse:kv:", cfg.Storage.Redis.Prefix)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "storage:\n  backend: file\n")
	t.Setenv("FITPULSE_STORAGE_BACKEND", "memory")
	t.Setenv("FITPULSE_API_TIMEOUT", "1m")
	t.Setenv("FITPULSE_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, time.Minute, cfg.API.Timeout)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_APIHost(t *testing.T) {
	t.Setenv("FITPULSE_API_HOST", "10.0.2.2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.2.2:3000", cfg.API.BaseURL)
}

func TestLoad_APIHostWithPort(t *testing.T) {
	t.Setenv("FITPULSE_API_HOST", "192.168.1.20:4000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:4000", cfg.API.BaseURL)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "api: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "localhost:3000" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"empty key", func(c *Config) { c.Storage.SessionKey = "" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "sqlite" }},
		{"file without dir", func(c *Config) { c.Storage.Dir = "" }},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.Redis.Addr = ""
		}},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
