package sdk

import (
	"math/rand"
	"time"
)

// RetryConfig controls exponential backoff, attempt counts and rate-limit waits.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// RetryPost allows non-idempotent methods (POST, PATCH) to be retried.
	RetryPost bool
	// MaxRateLimitWait caps how long a single rate-limit pause may last.
	// Zero disables waiting on rate limits; the 429 is returned as an APIError.
	MaxRateLimitWait time.Duration
}

// DefaultRetryConfig is the policy used by clients that retry out of the box.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:      3,
		BaseBackoff:      time.Second,
		MaxBackoff:       10 * time.Second,
		RetryPost:        false,
		MaxRateLimitWait: time.Minute,
	}
}

// NoRetry makes exactly one attempt.
func NoRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 1}
}

// Normalized fills zero values with usable defaults.
func (r RetryConfig) Normalized() RetryConfig {
	cfg := r
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 10 * time.Second
	}
	if cfg.MaxRateLimitWait < 0 {
		cfg.MaxRateLimitWait = 0
	}
	return cfg
}

// BackoffDelay returns how long to sleep before attempt (1-based). Attempt 1
// never sleeps; attempt n waits BaseBackoff<<(n-2), capped at MaxBackoff and
// scaled by a random factor in [0.5, 1.5). The result never exceeds MaxBackoff.
func (r RetryConfig) BackoffDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}
	delay := r.MaxBackoff
	if shift := attempt - 2; shift < 62 && r.BaseBackoff <= r.MaxBackoff>>shift {
		delay = r.BaseBackoff << shift
	}
	jittered := time.Duration(float64(delay) * (0.5 + rand.Float64()))
	return min(jittered, r.MaxBackoff)
}
