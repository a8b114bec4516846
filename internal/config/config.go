// Package config loads fitpulse settings from an optional YAML file, then
// applies FITPULSE_* environment overrides on top of the defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "fitpulse.yaml"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
}

type APIConfig struct {
	BaseURL      string        `yaml:"base_url" env:"FITPULSE_API_BASE_URL"`
	Host         string        `yaml:"-" env:"FITPULSE_API_HOST"`
	LoginPath    string        `yaml:"login_path" env:"FITPULSE_API_LOGIN_PATH"`
	RegisterPath string        `yaml:"register_path" env:"FITPULSE_API_REGISTER_PATH"`
	Timeout      time.Duration `yaml:"timeout" env:"FITPULSE_API_TIMEOUT"`
}

type StorageConfig struct {
	Backend       string      `yaml:"backend" env:"FITPULSE_STORAGE_BACKEND"`
	Dir           string      `yaml:"dir" env:"FITPULSE_STORAGE_DIR"`
	SessionKey    string      `yaml:"session_key" env:"FITPULSE_SESSION_KEY"`
	EncryptionKey string      `yaml:"encryption_key" env:"FITPULSE_ENCRYPTION_KEY"`
	Redis         RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"FITPULSE_REDIS_ADDR"`
	Password string        `yaml:"password" env:"FITPULSE_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"FITPULSE_REDIS_DB"`
	Prefix   string        `yaml:"prefix" env:"FITPULSE_REDIS_PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"FITPULSE_REDIS_TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"FITPULSE_LOG_LEVEL"`
	Format string `yaml:"format" env:"FITPULSE_LOG_FORMAT"`
}

type ServerConfig struct {
	Port int `yaml:"port" env:"FITPULSE_SERVER_PORT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "http://127.0.0.1:3000",
			LoginPath:    "/users/login",
			RegisterPath: "/users/register",
			Timeout:      10 * time.Second,
		},
		Storage: StorageConfig{
			Backend:    BackendFile,
			Dir:        ".fitpulse/store",
			SessionKey: "session",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "fitpulse:kv:",
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port: 8080,
		},
	}
}

// Load reads path (a missing file is not an error), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}
	cfg.applyHost()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyHost lets FITPULSE_API_HOST swap only the host of the base URL, so an
// emulator address like 10.0.2.2 can be set without repeating scheme and port.
func (c *Config) applyHost() {
	if c.API.Host == "" {
		return
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return
	}
	if port := u.Port(); port != "" && !strings.Contains(c.API.Host, ":") {
		u.Host = c.API.Host + ":" + port
	} else {
		u.Host = c.API.Host
	}
	c.API.BaseURL = u.String()
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) url, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.Storage.SessionKey == "" {
		return errors.New("storage.session_key must not be empty")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr is required for the redis backend")
		}
		if c.Storage.Redis.TTL < 0 {
			return errors.New("storage.redis.ttl must not be negative")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
