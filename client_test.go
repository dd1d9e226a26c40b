package sdk

import (
	"net/http"
	"testing"
	"time"
)

func TestResolveOptions(t *testing.T) {
	hc := &http.Client{}
	o := ResolveOptions(ClientOptions{BaseURL: "https://default"}, []Option{
		WithBaseURL("  https://override  "),
		WithHTTPClient(hc),
		WithTimeout(2 * time.Second),
		nil,
	})
	if o.BaseURL != "https://override" || o.HTTPClient != hc || o.Timeout != 2*time.Second {
		t.Fatalf("unexpected options %+v", o)
	}
	if o.UserAgent != DefaultUserAgent {
		t.Fatalf("expected default user agent, got %q", o.UserAgent)
	}
}

func TestResolveOptionsDefaults(t *testing.T) {
	o := ResolveOptions(ClientOptions{BaseURL: "https://default"}, nil)
	if o.HTTPClient != http.DefaultClient || o.BaseURL != "https://default" {
		t.Fatalf("unexpected defaults %+v", o)
	}
	if got := o.RetryPolicy(DefaultRetryConfig()); got.MaxAttempts != 3 {
		t.Fatalf("expected fallback retry policy, got %+v", got)
	}
}

func TestRetryOptions(t *testing.T) {
	o := ResolveOptions(ClientOptions{}, []Option{WithRetry(RetryConfig{MaxAttempts: 5})})
	if got := o.RetryPolicy(NoRetry()); got.MaxAttempts != 5 {
		t.Fatalf("expected override, got %+v", got)
	}
	o = ResolveOptions(ClientOptions{}, []Option{WithRetry(RetryConfig{MaxAttempts: 5}), DisableRetry()})
	if got := o.RetryPolicy(DefaultRetryConfig()); got.MaxAttempts != 1 {
		t.Fatalf("DisableRetry should win, got %+v", got)
	}
}
