package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.your-domain.com" {
		t.Fatalf("BaseURL = %s", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.JournalType != "bbolt" || cfg.JournalTTL != 30*24*time.Hour {
		t.Fatalf("unexpected journal defaults %+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REFERRAL_API_KEY", "secret")
	t.Setenv("REFERRAL_BASE_URL", "http://localhost:3000")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")
	t.Setenv("JOURNAL_TYPE", "none")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "secret" || cfg.BaseURL != "http://localhost:3000" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.JournalType != "none" {
		t.Fatalf("JournalType = %s", cfg.JournalType)
	}
	if got := cfg.Redacted().APIKey; got != "***" {
		t.Fatalf("Redacted APIKey = %s", got)
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
