package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %v", cfg.SessionTTL)
	}
	if cfg.SessionRetention != 5 {
		t.Errorf("expected retention 5, got %d", cfg.SessionRetention)
	}
	if cfg.ApplicationIDPrefix != "10" {
		t.Errorf("expected application id prefix 10, got %q", cfg.ApplicationIDPrefix)
	}
	if cfg.DatabaseDSN == "" || cfg.CacheDir == "" {
		t.Errorf("expected non-empty DSN and cache dir defaults")
	}
	// the signing secret has no safe default; it must be supplied
	if cfg.SecretKey != "" {
		t.Errorf("expected empty default secret, got %q", cfg.SecretKey)
	}
}

func TestLoadConfig_EnvOverridesSecret(t *testing.T) {
	t.Setenv("ADMITD_SECRET_KEY", "rotated-secret")
	t.Setenv("ADMITD_DATABASE_DSN", "postgres://env-host/admitd")

	cfg := LoadConfig()

	if cfg.SecretKey != "rotated-secret" {
		t.Errorf("expected env secret, got %q", cfg.SecretKey)
	}
	if cfg.DatabaseDSN != "postgres://env-host/admitd" {
		t.Errorf("expected env DSN, got %q", cfg.DatabaseDSN)
	}
}
