package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("BOT_TYPE", "")
	t.Setenv("RATE_LIMIT_RPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackendURL != "http://localhost:3000" {
		t.Fatalf("expected default backend url, got %q", cfg.BackendURL)
	}
	if cfg.BotType != "documents" {
		t.Fatalf("expected default bot type documents, got %q", cfg.BotType)
	}
	if cfg.RequestTimeoutSeconds != 60 {
		t.Fatalf("expected default timeout 60, got %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.GuestMaxFileBytes != 5*1024*1024 {
		t.Fatalf("expected default guest max 5MB, got %d", cfg.GuestMaxFileBytes)
	}
}

func TestLoadParsesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BACKEND_URL", "https://api.example.com")
	t.Setenv("BOT_TYPE", "custom_bot")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("BREAKER_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackendURL != "https://api.example.com" {
		t.Fatalf("expected backend url override, got %q", cfg.BackendURL)
	}
	if cfg.BotType != "custom_bot" {
		t.Fatalf("expected bot type override, got %q", cfg.BotType)
	}
	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected retry attempts 5, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
}

func TestLoadAppliesYAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("backend_url: https://file.example.com\nbot_type: demo\nmetrics_port: \"9091\"\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BACKEND_URL", "https://env.example.com")
	t.Setenv("BOT_TYPE", "")
	t.Setenv("METRICS_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackendURL != "https://env.example.com" {
		t.Fatalf("env must win over file, got %q", cfg.BackendURL)
	}
	if cfg.BotType != "demo" {
		t.Fatalf("expected bot type from file, got %q", cfg.BotType)
	}
	if cfg.MetricsPort != "9091" {
		t.Fatalf("expected metrics port from file, got %q", cfg.MetricsPort)
	}
}

func TestLoadEnvWinsOverFileForEveryKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("retry_max_attempts: 9\nbreaker_failure_ratio: 0.9\nguest_max_file_bytes: 1048576\nrate_limit_rps: 50\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("BREAKER_FAILURE_RATIO", "0.25")
	t.Setenv("GUEST_MAX_FILE_BYTES", "")
	t.Setenv("RATE_LIMIT_RPS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("RetryMaxAttempts = %d, want env value 5", cfg.RetryMaxAttempts)
	}
	if cfg.BreakerFailureRatio != 0.25 {
		t.Fatalf("BreakerFailureRatio = %v, want env value 0.25", cfg.BreakerFailureRatio)
	}
	if cfg.GuestMaxFileBytes != 1048576 {
		t.Fatalf("GuestMaxFileBytes = %d, want file value 1MB", cfg.GuestMaxFileBytes)
	}
	if cfg.RateLimitRPS != 50 {
		t.Fatalf("RateLimitRPS = %v, want file value 50", cfg.RateLimitRPS)
	}
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
