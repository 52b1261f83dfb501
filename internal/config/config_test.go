package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.StoreType != "memory" {
		t.Errorf("StoreType = %q, want memory", cfg.StoreType)
	}
	if cfg.MaxRounds != 20 {
		t.Errorf("MaxRounds = %d, want 20", cfg.MaxRounds)
	}
	if cfg.A2ATimeoutSeconds != 30 {
		t.Errorf("A2ATimeoutSeconds = %d, want 30", cfg.A2ATimeoutSeconds)
	}
	if cfg.MatchScoreFloor != 60 {
		t.Errorf("MatchScoreFloor = %d, want 60", cfg.MatchScoreFloor)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("port: \"9090\"\nmax_rounds: 8\nwebhooks:\n  buyrequest.search_progress: http://observer.example/hook\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_ROUNDS", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want file value 9090", cfg.Port)
	}
	if cfg.MaxRounds != 12 {
		t.Errorf("MaxRounds = %d, want env override 12", cfg.MaxRounds)
	}
	if got := cfg.Webhooks["buyrequest.search_progress"]; got != "http://observer.example/hook" {
		t.Errorf("webhook = %q", got)
	}
}

func TestLoadProductionRequirements(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("STORE_TYPE", "mongo")
	if _, err := Load(); err == nil {
		t.Error("Load() = nil error without GEMINI_API_KEY in production")
	}

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("STORE_TYPE", "memory")
	if _, err := Load(); err == nil {
		t.Error("Load() = nil error with memory store in production")
	}

	t.Setenv("STORE_TYPE", "mongo")
	if _, err := Load(); err != nil {
		t.Errorf("Load() = %v with complete production config", err)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	if got := getEnvInt("SOME_INT", 7); got != 7 {
		t.Errorf("getEnvInt(garbage) = %d, want default 7", got)
	}
	t.Setenv("SOME_INT", "42")
	if got := getEnvInt("SOME_INT", 7); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
}
