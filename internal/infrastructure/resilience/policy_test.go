package resilience

import (
	"testing"
	"time"
)

func TestWithDefaultsFillsZeroConfig(t *testing.T) {
	cfg := Config{}.withDefaults()
	def := DefaultConfig()

	if cfg.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("RetryMaxAttempts = %d, want %d", cfg.RetryMaxAttempts, def.RetryMaxAttempts)
	}
	if cfg.RetryInitialBackoff != def.RetryInitialBackoff || cfg.RetryMaxBackoff != def.RetryMaxBackoff {
		t.Fatalf("backoff = %v/%v, want defaults", cfg.RetryInitialBackoff, cfg.RetryMaxBackoff)
	}
	if cfg.BreakerMinRequests != def.BreakerMinRequests || cfg.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("breaker thresholds = %d/%v, want defaults", cfg.BreakerMinRequests, cfg.BreakerFailureRatio)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		RetryMaxAttempts:    5,
		RetryInitialBackoff: 50 * time.Millisecond,
		RetryMaxBackoff:     time.Second,
		RetryMultiplier:     1.5,
	}.withDefaults()

	if cfg.RetryMaxAttempts != 5 || cfg.RetryInitialBackoff != 50*time.Millisecond {
		t.Fatalf("explicit retry settings must survive: %+v", cfg)
	}
	if cfg.RetryMultiplier != 1.5 {
		t.Fatalf("RetryMultiplier = %v, want 1.5", cfg.RetryMultiplier)
	}
}

func TestWithDefaultsRepairsInvertedBackoff(t *testing.T) {
	cfg := Config{
		RetryInitialBackoff: 500 * time.Millisecond,
		RetryMaxBackoff:     100 * time.Millisecond,
	}.withDefaults()

	if cfg.RetryMaxBackoff < cfg.RetryInitialBackoff {
		t.Fatalf("max backoff %v may not undercut initial %v", cfg.RetryMaxBackoff, cfg.RetryInitialBackoff)
	}
}

func TestWithDefaultsRejectsOutOfRangeRatio(t *testing.T) {
	def := DefaultConfig()
	for _, ratio := range []float64{-0.5, 0, 1.5} {
		cfg := Config{BreakerFailureRatio: ratio}.withDefaults()
		if cfg.BreakerFailureRatio != def.BreakerFailureRatio {
			t.Fatalf("ratio %v must fall back to %v, got %v", ratio, def.BreakerFailureRatio, cfg.BreakerFailureRatio)
		}
	}
	cfg := Config{RetryMultiplier: 0.5}.withDefaults()
	if cfg.RetryMultiplier != def.RetryMultiplier {
		t.Fatalf("sub-1 multiplier must fall back, got %v", cfg.RetryMultiplier)
	}
}
