package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.validateOracle(); err != nil {
		return err
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := c.validateViews(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateOracle() error {
	if c.Oracle.Provider != ProviderAnthropic {
		return fmt.Errorf("oracle.provider must be %q, got %q", ProviderAnthropic, c.Oracle.Provider)
	}
	if c.Oracle.Model == "" {
		return fmt.Errorf("oracle.model is required")
	}
	if c.Oracle.MaxTokens < 1 {
		return fmt.Errorf("oracle.max_tokens must be positive, got %d", c.Oracle.MaxTokens)
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 1 {
		return fmt.Errorf("oracle.temperature must be between 0 and 1, got %v", c.Oracle.Temperature)
	}
	if c.Oracle.Timeout.Duration <= 0 {
		return fmt.Errorf("oracle.timeout must be positive")
	}
	u, err := url.Parse(c.Oracle.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("oracle.base_url must be an http(s) URL, got %q", c.Oracle.BaseURL)
	}
	switch c.Oracle.CacheBackend {
	case BackendFile:
	case BackendRedis:
		if c.Views.RedisAddr == "" {
			return fmt.Errorf("views.redis_addr is required for the redis response cache")
		}
	default:
		return fmt.Errorf("oracle.cache_backend must be file or redis, got %q", c.Oracle.CacheBackend)
	}
	return nil
}

func (c *Config) validateViews() error {
	switch c.Views.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Views.RedisAddr == "" {
			return fmt.Errorf("views.redis_addr is required for the redis backend")
		}
		if c.Views.RedisDB < 0 || c.Views.RedisDB > 15 {
			return fmt.Errorf("views.redis_db must be between 0 and 15, got %d", c.Views.RedisDB)
		}
	case BackendMongo:
		uri := c.Views.MongoURI.Value()
		if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
			return fmt.Errorf("views.mongo_uri must start with mongodb:// or mongodb+srv://")
		}
		if c.Views.MongoDatabase == "" {
			return fmt.Errorf("views.mongo_database is required for the mongo backend")
		}
	default:
		return fmt.Errorf("views.backend must be one of memory, file, redis, mongo; got %q", c.Views.Backend)
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q is not host:port: %w", c.Server.Addr, err)
	}
	for _, o := range c.Server.CORSOrigins {
		if o == "*" {
			return fmt.Errorf("server.cors_origins must not contain a wildcard")
		}
		u, err := url.Parse(o)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.cors_origins entry %q is not a valid origin", o)
		}
	}
	return nil
}
