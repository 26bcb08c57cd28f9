package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("NATSURL = %q", cfg.NATSURL)
	}
	if cfg.MaxTurnsPerLead != 200 {
		t.Errorf("MaxTurnsPerLead = %d, want 200", cfg.MaxTurnsPerLead)
	}
	if cfg.ContextTurns != 12 {
		t.Errorf("ContextTurns = %d, want 12", cfg.ContextTurns)
	}
	if cfg.DealershipName != "the dealership" {
		t.Errorf("DealershipName = %q", cfg.DealershipName)
	}
	if cfg.TracingEnabled {
		t.Error("TracingEnabled default should be false")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_TURNS_PER_LEAD", "50")
	t.Setenv("DEALERSHIP_NAME", "Acme Motors")
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.MaxTurnsPerLead != 50 {
		t.Errorf("MaxTurnsPerLead = %d, want 50", cfg.MaxTurnsPerLead)
	}
	if cfg.DealershipName != "Acme Motors" {
		t.Errorf("DealershipName = %q", cfg.DealershipName)
	}
	if cfg.ServerReadTimeout != 45*time.Second {
		t.Errorf("ServerReadTimeout = %v", cfg.ServerReadTimeout)
	}
	if !cfg.TracingEnabled {
		t.Error("TracingEnabled should be true")
	}
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("MAX_TURNS_PER_LEAD", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	if cfg.MaxTurnsPerLead != 200 {
		t.Errorf("MaxTurnsPerLead = %d, want default 200", cfg.MaxTurnsPerLead)
	}
	if cfg.ServerReadTimeout != 30*time.Second {
		t.Errorf("ServerReadTimeout = %v, want default 30s", cfg.ServerReadTimeout)
	}
	if cfg.TracingEnabled {
		t.Error("TracingEnabled should fall back to false")
	}
}
