package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BackendURL string `yaml:"backend_url"`
	AuthToken  string `yaml:"auth_token"`
	BotType    string `yaml:"bot_type"`
	LogLevel   string `yaml:"log_level"`

	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
	RateLimitRPS          float64 `yaml:"rate_limit_rps"`
	RateLimitBurst        int     `yaml:"rate_limit_burst"`

	RetryMaxAttempts       int     `yaml:"retry_max_attempts"`
	RetryInitialBackoffMs  int     `yaml:"retry_initial_backoff_ms"`
	RetryMaxBackoffMs      int     `yaml:"retry_max_backoff_ms"`
	RetryMultiplier        float64 `yaml:"retry_multiplier"`
	BreakerEnabled         bool    `yaml:"breaker_enabled"`
	BreakerMinRequests     int     `yaml:"breaker_min_requests"`
	BreakerFailureRatio    float64 `yaml:"breaker_failure_ratio"`
	BreakerOpenTimeoutSecs int     `yaml:"breaker_open_timeout_seconds"`

	MetricsPort string `yaml:"metrics_port"`

	GuestMaxFileBytes int64 `yaml:"guest_max_file_bytes"`
	PersistQueueSize  int   `yaml:"persist_queue_size"`
}

// Load builds the config in three layers: defaults, then the optional YAML
// file named by CONFIG_FILE, then the environment. An env var that is set
// wins over the file for every key.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	return overlayEnv(cfg), nil
}

func defaultConfig() Config {
	return Config{
		BackendURL: "http://localhost:3000",
		BotType:    "documents",
		LogLevel:   "info",

		RequestTimeoutSeconds: 60,
		RateLimitRPS:          5,
		RateLimitBurst:        10,

		RetryMaxAttempts:       3,
		RetryInitialBackoffMs:  100,
		RetryMaxBackoffMs:      400,
		RetryMultiplier:        2.0,
		BreakerEnabled:         true,
		BreakerMinRequests:     10,
		BreakerFailureRatio:    0.5,
		BreakerOpenTimeoutSecs: 30,

		GuestMaxFileBytes: 5 * 1024 * 1024,
		PersistQueueSize:  64,
	}
}

// overlayEnv applies every env key on top of cfg. Unset vars keep the value
// already in cfg, whether it came from the defaults or the file.
func overlayEnv(cfg Config) Config {
	cfg.BackendURL = mustEnv("BACKEND_URL", cfg.BackendURL)
	cfg.AuthToken = mustEnv("AUTH_TOKEN", cfg.AuthToken)
	cfg.BotType = mustEnv("BOT_TYPE", cfg.BotType)
	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.RequestTimeoutSeconds = mustEnvInt("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds)
	cfg.RateLimitRPS = mustEnvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = mustEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	cfg.RetryMaxAttempts = mustEnvInt("RETRY_MAX_ATTEMPTS", cfg.RetryMaxAttempts)
	cfg.RetryInitialBackoffMs = mustEnvInt("RETRY_INITIAL_BACKOFF_MS", cfg.RetryInitialBackoffMs)
	cfg.RetryMaxBackoffMs = mustEnvInt("RETRY_MAX_BACKOFF_MS", cfg.RetryMaxBackoffMs)
	cfg.RetryMultiplier = mustEnvFloat("RETRY_MULTIPLIER", cfg.RetryMultiplier)
	cfg.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerMinRequests = mustEnvInt("BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests)
	cfg.BreakerFailureRatio = mustEnvFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerOpenTimeoutSecs = mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", cfg.BreakerOpenTimeoutSecs)

	cfg.MetricsPort = mustEnv("METRICS_PORT", cfg.MetricsPort)

	cfg.GuestMaxFileBytes = int64(mustEnvInt("GUEST_MAX_FILE_BYTES", int(cfg.GuestMaxFileBytes)))
	cfg.PersistQueueSize = mustEnvInt("PERSIST_QUEUE_SIZE", cfg.PersistQueueSize)
	return cfg
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
