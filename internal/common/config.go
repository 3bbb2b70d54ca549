// Package common provides shared utilities for FundWatch
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for FundWatch
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Provider    ProviderConfig  `toml:"provider"`
	Cache       CacheConfig     `toml:"cache"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the BadgerHold data directory.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ProviderConfig holds market-data provider configuration
type ProviderConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ProviderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// CacheConfig holds TTLs for the in-memory caches.
type CacheConfig struct {
	QuoteTTL   string `toml:"quote_ttl"`   // duration string, default "60s"
	CatalogTTL string `toml:"catalog_ttl"` // duration string, default "1h"
}

// GetQuoteTTL parses and returns the quote cache TTL.
func (c *CacheConfig) GetQuoteTTL() time.Duration {
	d, err := time.ParseDuration(c.QuoteTTL)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetCatalogTTL parses and returns the fund catalog cache TTL.
func (c *CacheConfig) GetCatalogTTL() time.Duration {
	d, err := time.ParseDuration(c.CatalogTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// SchedulerConfig holds background job configuration.
type SchedulerConfig struct {
	QuoteInterval    string `toml:"quote_interval"`    // interval between quote refreshes, default "30s"
	SnapshotInterval string `toml:"snapshot_interval"` // how often the snapshot job wakes up, default "5m"
}

// GetQuoteInterval parses and returns the quote refresh interval.
func (c *SchedulerConfig) GetQuoteInterval() time.Duration {
	d, err := time.ParseDuration(c.QuoteInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetSnapshotInterval parses and returns the snapshot job wake interval.
func (c *SchedulerConfig) GetSnapshotInterval() time.Duration {
	d, err := time.ParseDuration(c.SnapshotInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/fundwatch",
		},
		Provider: ProviderConfig{
			BaseURL:   "https://push2.eastmoney.com",
			RateLimit: 10,
			Timeout:   "10s",
		},
		Cache: CacheConfig{
			QuoteTTL:   "60s",
			CatalogTTL: "1h",
		},
		Scheduler: SchedulerConfig{
			QuoteInterval:    "30s",
			SnapshotInterval: "5m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FUNDWATCH_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FUNDWATCH_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FUNDWATCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FUNDWATCH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FUNDWATCH_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if url := os.Getenv("FUNDWATCH_PROVIDER_URL"); url != "" {
		config.Provider.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
