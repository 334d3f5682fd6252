// Package config loads holder-flow configuration from an optional YAML file and
// HOLDERFLOW_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	MaxPageSize     int           `mapstructure:"max_page_size"`
}

// StorageConfig selects and configures the snapshot and holder backends.
type StorageConfig struct {
	Driver         string `mapstructure:"driver"`          // memory | postgres | sqlite
	SnapshotSource string `mapstructure:"snapshot_source"` // primary | clickhouse
	PostgresDSN    string `mapstructure:"postgres_dsn"`
	PostgresConns  int32  `mapstructure:"postgres_max_conns"`
	ClickhouseDSN  string `mapstructure:"clickhouse_dsn"`
	SQLitePath     string `mapstructure:"sqlite_path"`
}

// CacheConfig holds the Redis result cache configuration.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// AnalyticsConfig holds classifier parameters.
type AnalyticsConfig struct {
	LookbackDays                int     `mapstructure:"lookback_days"`
	VolatilityThreshold         float64 `mapstructure:"volatility_threshold"`
	CorrelationThreshold        float64 `mapstructure:"correlation_threshold"`
	CoordinationMinParticipants int     `mapstructure:"coordination_min_participants"`
	SuspiciousCorrelation       float64 `mapstructure:"suspicious_correlation"`
	SuspiciousParticipants      int     `mapstructure:"suspicious_participants"`
	SignificantMovePct          float64 `mapstructure:"significant_move_pct"`
	Workers                     int     `mapstructure:"workers"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from path (optional) and environment variables.
// HOLDERFLOW_STORAGE_DRIVER overrides storage.driver, and so on.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("HOLDERFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply without a file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.default_page_size", 50)
	v.SetDefault("server.max_page_size", 500)

	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.snapshot_source", "primary")
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.postgres_max_conns", 10)
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("storage.sqlite_path", "./data/holder-flow.db")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("analytics.lookback_days", 30)
	v.SetDefault("analytics.volatility_threshold", 10000.0)
	v.SetDefault("analytics.correlation_threshold", 0.2)
	v.SetDefault("analytics.coordination_min_participants", 3)
	v.SetDefault("analytics.suspicious_correlation", 0.8)
	v.SetDefault("analytics.suspicious_participants", 5)
	v.SetDefault("analytics.significant_move_pct", 10.0)
	v.SetDefault("analytics.workers", 0) // 0 = GOMAXPROCS

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.DefaultPageSize < 1 || c.Server.DefaultPageSize > c.Server.MaxPageSize {
		return fmt.Errorf("server.default_page_size must be between 1 and server.max_page_size")
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required when storage.driver is postgres")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required when storage.driver is sqlite")
		}
	default:
		return fmt.Errorf("storage.driver must be one of: memory, postgres, sqlite")
	}
	switch c.Storage.SnapshotSource {
	case "primary":
	case "clickhouse":
		if c.Storage.ClickhouseDSN == "" {
			return fmt.Errorf("storage.clickhouse_dsn is required when storage.snapshot_source is clickhouse")
		}
	default:
		return fmt.Errorf("storage.snapshot_source must be one of: primary, clickhouse")
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr is required when cache is enabled")
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive")
		}
	}

	a := c.Analytics
	if a.LookbackDays < 0 {
		return fmt.Errorf("analytics.lookback_days must not be negative")
	}
	if a.VolatilityThreshold < 0 {
		return fmt.Errorf("analytics.volatility_threshold must not be negative")
	}
	if a.CorrelationThreshold < 0 || a.CorrelationThreshold > 1 {
		return fmt.Errorf("analytics.correlation_threshold must be between 0.0 and 1.0")
	}
	if a.SuspiciousCorrelation < 0 || a.SuspiciousCorrelation > 1 {
		return fmt.Errorf("analytics.suspicious_correlation must be between 0.0 and 1.0")
	}
	if a.CoordinationMinParticipants < 2 {
		return fmt.Errorf("analytics.coordination_min_participants must be at least 2")
	}
	if a.SuspiciousParticipants < a.CoordinationMinParticipants {
		return fmt.Errorf("analytics.suspicious_participants must be at least analytics.coordination_min_participants")
	}
	if a.SignificantMovePct <= 0 {
		return fmt.Errorf("analytics.significant_move_pct must be positive")
	}
	if a.Workers < 0 {
		return fmt.Errorf("analytics.workers must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
