// Package sdk holds the pieces shared by the apisdk API clients: errors,
// retry policy, telemetry hooks and client options. The clients themselves
// live in the messaging and github subpackages.
package sdk

import (
	"net/http"
	"strings"
	"time"
)

// ClientOptions is the resolved configuration a client is built from.
// Callers normally use Option functions rather than filling it in directly.
type ClientOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
	Telemetry  TelemetryHooks
	// Retry overrides the client's default retry policy when non-nil.
	Retry *RetryConfig
	// Timeout bounds each attempt; zero leaves the HTTP client's own timeout in place.
	Timeout time.Duration
}

// Option customizes a client at construction.
type Option func(*ClientOptions)

// WithBaseURL overrides the API base URL (useful for tests and proxies).
func WithBaseURL(baseURL string) Option {
	return func(o *ClientOptions) {
		o.BaseURL = strings.TrimSpace(baseURL)
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *ClientOptions) {
		o.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *ClientOptions) {
		o.UserAgent = strings.TrimSpace(ua)
	}
}

// WithTelemetry installs observability hooks.
func WithTelemetry(hooks TelemetryHooks) Option {
	return func(o *ClientOptions) {
		o.Telemetry = hooks
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(o *ClientOptions) {
		copy := cfg.Normalized()
		o.Retry = &copy
	}
}

// DisableRetry forces a single attempt per call.
func DisableRetry() Option {
	return func(o *ClientOptions) {
		cfg := NoRetry()
		o.Retry = &cfg
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *ClientOptions) {
		o.Timeout = d
	}
}

// ResolveOptions applies opts over the given defaults.
func ResolveOptions(defaults ClientOptions, opts []Option) ClientOptions {
	resolved := defaults
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&resolved)
	}
	if resolved.UserAgent == "" {
		resolved.UserAgent = DefaultUserAgent
	}
	if resolved.HTTPClient == nil {
		resolved.HTTPClient = http.DefaultClient
	}
	return resolved
}

// RetryPolicy returns the configured retry policy or fallback when none was set.
func (o ClientOptions) RetryPolicy(fallback RetryConfig) RetryConfig {
	if o.Retry != nil {
		return o.Retry.Normalized()
	}
	return fallback.Normalized()
}
