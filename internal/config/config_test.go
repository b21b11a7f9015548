package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetenv clears key for the duration of the test
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func baseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "localhost")
	for _, key := range []string{
		"REVIEW_ANONYMOUS_WEIGHT",
		"REVIEW_IDENTIFIED_WEIGHT",
		"VAULT_ENABLED",
		"VAULT_TOKEN",
		"SCHEDULER_SESSION_CLEANUP_INTERVAL",
	} {
		unsetenv(t, key)
	}
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Review.AnonymousWeight != 0.5 || cfg.Review.IdentifiedWeight != 1.0 {
		t.Errorf("unexpected weights %+v", cfg.Review)
	}
	if cfg.Vault.Enabled {
		t.Error("vault should be disabled by default")
	}
	if cfg.Scheduler.SessionCleanupInterval != time.Hour {
		t.Errorf("expected 1h cleanup interval, got %v", cfg.Scheduler.SessionCleanupInterval)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing jwt secret", map[string]string{"JWT_SECRET": ""}},
		{"zero anonymous weight", map[string]string{"REVIEW_ANONYMOUS_WEIGHT": "0"}},
		{"anonymous above identified", map[string]string{"REVIEW_ANONYMOUS_WEIGHT": "1.5"}},
		{"vault without token", map[string]string{"VAULT_ENABLED": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	baseEnv(t)

	path := filepath.Join(t.TempDir(), "review.env")
	if err := os.WriteFile(path, []byte("REVIEW_ANONYMOUS_WEIGHT=0.25\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv sets the variable process-wide; restore it afterwards
	t.Cleanup(func() { os.Unsetenv("REVIEW_ANONYMOUS_WEIGHT") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Review.AnonymousWeight != 0.25 {
		t.Errorf("expected weight from env file, got %v", cfg.Review.AnonymousWeight)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}

func TestGetSliceEnv(t *testing.T) {
	t.Setenv("TEST_SLICE", " a, ,b ,")
	got := getSliceEnv("TEST_SLICE", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected slice %q", got)
	}

	t.Setenv("TEST_SLICE", " , ")
	if got := getSliceEnv("TEST_SLICE", []string{"default"}); len(got) != 1 || got[0] != "default" {
		t.Errorf("expected default, got %q", got)
	}
}
