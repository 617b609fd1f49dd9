package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the top-level configuration for Tailorworks.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Aggregation AggregationConfig `koanf:"aggregation"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

// DatabaseConfig holds the database connection settings.
type DatabaseConfig struct {
	Type         string `koanf:"type"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// AggregationConfig holds settings for the analytics aggregation engine.
type AggregationConfig struct {
	// AsyncEnabled runs the bill event dispatcher; without it the
	// ingestion endpoint only accepts synchronous events.
	AsyncEnabled bool `koanf:"async_enabled"`

	// ChannelBufferSize is the dispatcher's event buffer capacity.
	ChannelBufferSize int `koanf:"channel_buffer_size"`

	// LegacyDeleteQuirks keeps the historical delete accounting so
	// rebuilt rollups stay comparable with existing records.
	LegacyDeleteQuirks bool `koanf:"legacy_delete_quirks"`

	// ApplyRetries bounds the compare-and-swap retry loop per event.
	ApplyRetries int `koanf:"apply_retries"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be > 0")
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be > 0")
	}
	if c.Database.Type != "" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}

	if c.Aggregation.ChannelBufferSize < 0 {
		return fmt.Errorf("aggregation.channel_buffer_size must be >= 0")
	}
	if c.Aggregation.ApplyRetries < 0 {
		return fmt.Errorf("aggregation.apply_retries must be >= 0")
	}

	return nil
}

// Load parses config from defaults, an optional YAML file, and the
// environment, then validates the result. Environment variables use the
// TAILORWORKS_ prefix with __ as the key separator, e.g.
// TAILORWORKS_DATABASE__DSN overrides database.dsn.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                      8080,
		"server.host":                      "0.0.0.0",
		"server.mode":                      "release",
		"database.type":                    "postgres",
		"database.dsn":                     "",
		"database.max_open_conns":          25,
		"database.max_idle_conns":          25,
		"database.auto_migrate":            true,
		"aggregation.async_enabled":        true,
		"aggregation.channel_buffer_size":  1024,
		"aggregation.legacy_delete_quirks": true,
		"aggregation.apply_retries":        3,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("TAILORWORKS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TAILORWORKS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
