// Package main provides the obranet server CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Blobs     BlobConfig      `yaml:"blobs"`
	Auth      AuthConfig      `yaml:"auth"`
	Reporting ReportingConfig `yaml:"reporting"`
	Verbose   bool            `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Address string `yaml:"address"` // HTTP listen address (default: :8080)
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // database file path
}

// BlobConfig contains file storage settings.
type BlobConfig struct {
	Dir string `yaml:"dir"` // directory for uploaded files
}

// AuthConfig contains token and login settings.
type AuthConfig struct {
	AccessTokenTTL     time.Duration `yaml:"access_token_ttl"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"`
}

// ReportingConfig contains timestamp settings.
type ReportingConfig struct {
	Timezone string `yaml:"timezone"` // IANA zone for closure and avance stamps
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/obranet.db"
	}
	if c.Blobs.Dir == "" {
		c.Blobs.Dir = "data/uploads"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.LoginRatePerMinute == 0 {
		c.Auth.LoginRatePerMinute = 10
	}
	if c.Reporting.Timezone == "" {
		c.Reporting.Timezone = "America/Santiago"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.AccessTokenTTL < 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive")
	}
	if c.Auth.LoginRatePerMinute < 0 {
		return fmt.Errorf("auth.login_rate_per_minute must be positive")
	}
	return nil
}
