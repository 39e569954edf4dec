package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Address != ":8080" {
		t.Errorf("address = %q, want :8080", cfg.Server.Address)
	}
	if cfg.Database.Path != "data/obranet.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Blobs.Dir != "data/uploads" {
		t.Errorf("blob dir = %q", cfg.Blobs.Dir)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("token ttl = %v, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.LoginRatePerMinute != 10 {
		t.Errorf("login rate = %d, want 10", cfg.Auth.LoginRatePerMinute)
	}
	if cfg.Reporting.Timezone != "America/Santiago" {
		t.Errorf("timezone = %q, want America/Santiago", cfg.Reporting.Timezone)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  address: ":9090"
database:
  path: /var/lib/obranet/obranet.db
auth:
  access_token_ttl: 1h
  login_rate_per_minute: 5
reporting:
  timezone: America/Bogota
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("address = %q, want :9090", cfg.Server.Address)
	}
	if cfg.Database.Path != "/var/lib/obranet/obranet.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("token ttl = %v, want 1h", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.LoginRatePerMinute != 5 {
		t.Errorf("login rate = %d, want 5", cfg.Auth.LoginRatePerMinute)
	}
	if cfg.Reporting.Timezone != "America/Bogota" {
		t.Errorf("timezone = %q, want America/Bogota", cfg.Reporting.Timezone)
	}
	// Unspecified fields fall back to defaults.
	if cfg.Blobs.Dir != "data/uploads" {
		t.Errorf("blob dir = %q, want default", cfg.Blobs.Dir)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing config file accepted")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  access_token_ttl: -5m\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("negative token ttl accepted")
	}
}
