package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "wallet.db" {
		t.Errorf("Expected default database path wallet.db, got %s", cfg.Database.Path)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Auth.TokenTtl != 24*time.Hour {
		t.Errorf("Expected default token ttl 24h, got %v", cfg.Auth.TokenTtl)
	}
	if cfg.Database.MaxOpenConns <= 0 {
		t.Errorf("Expected positive default max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("SEED_DEMO_USERS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Server.Port)
	}
	if cfg.Auth.TokenTtl != 30*time.Minute {
		t.Errorf("Expected ttl 30m, got %v", cfg.Auth.TokenTtl)
	}
	if !cfg.Database.SeedDemoUsers {
		t.Error("Expected demo user seeding enabled")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("AUTH_TOKEN_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid duration")
	}
}
