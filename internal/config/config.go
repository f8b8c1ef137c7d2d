// Package config loads conceptmap settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/oracle"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Duration is a time.Duration that reads "90s" style strings from TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// View store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// ProviderAnthropic is the only oracle provider.
const ProviderAnthropic = "anthropic"

// Config holds all application configuration values.
type Config struct {
	Oracle OracleConfig  `toml:"oracle"`
	Layout layout.Config `toml:"layout"`
	Views  ViewsConfig   `toml:"views"`
	Server ServerConfig  `toml:"server"`
}

// OracleConfig selects and tunes the synthesis model.
type OracleConfig struct {
	Provider    string   `toml:"provider"`
	APIKey      Secret   `toml:"api_key"`
	Model       string   `toml:"model"`
	MaxTokens   int      `toml:"max_tokens"`
	Temperature float64  `toml:"temperature"`
	BaseURL     string   `toml:"base_url"`
	Timeout     Duration `toml:"timeout"`

	// Cache enables the response cache. CacheBackend is file or redis;
	// redis reuses the [views] connection settings.
	Cache        bool   `toml:"cache"`
	CacheBackend string `toml:"cache_backend"`
}

// ViewsConfig selects where saved views live.
type ViewsConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword Secret `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	MongoURI      Secret `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures `conceptmap serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Oracle: OracleConfig{
			Provider:     ProviderAnthropic,
			Model:        oracle.DefaultModel,
			MaxTokens:    oracle.DefaultMaxTokens,
			BaseURL:      oracle.DefaultBaseURL,
			Timeout:      Duration{oracle.DefaultTimeout},
			CacheBackend: BackendFile,
		},
		Layout: layout.DefaultConfig(),
		Views: ViewsConfig{
			Backend:       BackendFile,
			RedisAddr:     "localhost:6379",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "conceptmap",
		},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			CORSOrigins: []string{"http://localhost:5173"},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/conceptmap/config.toml, falling back
// to ~/.config/conceptmap/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "conceptmap", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "conceptmap", "config.toml"), nil
}

// Load reads path (or [DefaultPath] when empty), applies environment
// overrides and validates the result. A missing file yields defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.Oracle.APIKey = Secret(envOrDefault("ANTHROPIC_API_KEY", c.Oracle.APIKey.Value()))
	c.Oracle.Model = envOrDefault("CONCEPTMAP_MODEL", c.Oracle.Model)
	c.Oracle.CacheBackend = envOrDefault("CONCEPTMAP_CACHE_BACKEND", c.Oracle.CacheBackend)
	c.Views.Backend = envOrDefault("CONCEPTMAP_VIEWS_BACKEND", c.Views.Backend)
	c.Views.RedisAddr = envOrDefault("CONCEPTMAP_REDIS_ADDR", c.Views.RedisAddr)
	c.Views.MongoURI = Secret(envOrDefault("CONCEPTMAP_MONGO_URI", c.Views.MongoURI.Value()))
	c.Server.Addr = envOrDefault("CONCEPTMAP_ADDR", c.Server.Addr)

	if v := os.Getenv("CONCEPTMAP_CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i, o := range origins {
			origins[i] = strings.TrimSpace(o)
		}
		c.Server.CORSOrigins = origins
	}
	if v := os.Getenv("CONCEPTMAP_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONCEPTMAP_REDIS_DB must be an integer")
		}
		c.Views.RedisDB = db
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// AnthropicConfig converts the oracle section for [oracle.NewAnthropic].
func (c *Config) AnthropicConfig() oracle.AnthropicConfig {
	return oracle.AnthropicConfig{
		APIKey:      c.Oracle.APIKey.Value(),
		Model:       c.Oracle.Model,
		MaxTokens:   c.Oracle.MaxTokens,
		Temperature: c.Oracle.Temperature,
		BaseURL:     c.Oracle.BaseURL,
		Timeout:     c.Oracle.Timeout.Duration,
	}
}
