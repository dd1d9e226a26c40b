package transport

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/trace"

	sdk "github.com/sdkcourse/apisdk/go"
	"github.com/sdkcourse/apisdk/go/testutil"
)

type sleepLog struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepLog) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func newTestClient(t *testing.T, baseURL string, cfg Config) (*Client, *sleepLog) {
	t.Helper()
	cfg.BaseURL = baseURL
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	sl := &sleepLog{}
	c.sleep = sl.sleep
	return c, sl
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://api.example.com/v1/", want: "https://api.example.com/v1"},
		{in: "  http://localhost:8080  ", want: "http://localhost:8080"},
		{in: "", wantErr: true},
		{in: "api.example.com", wantErr: true},
		{in: "https://", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeBaseURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("NormalizeBaseURL(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NormalizeBaseURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDoSendsFormBodyAndBasicAuth(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Reply{Status: http.StatusCreated, Body: `{"ok":true}`})
	defer rec.Close()

	c, _ := newTestClient(t, rec.URL+"/base/", Config{
		Auth:      BasicAuth{Username: "AC123", Password: "secret"},
		UserAgent: "test-agent",
	})
	form := url.Values{"To": {"+15551234567"}, "Body": {"hi"}}
	var out struct {
		OK bool `json:"ok"`
	}
	meta, err := c.DoJSON(context.Background(), Request{Method: http.MethodPost, Path: "/Messages.json", Form: form}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if meta.StatusCode != http.StatusCreated || !out.OK {
		t.Fatalf("unexpected result meta=%+v out=%+v", meta, out)
	}

	got := rec.Last()
	if got.Path != "/base/Messages.json" {
		t.Fatalf("unexpected path %q", got.Path)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if diff := cmp.Diff(form, got.Form()); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	req := &http.Request{Header: got.Header}
	user, pass, ok := req.BasicAuth()
	if !ok || user != "AC123" || pass != "secret" {
		t.Fatalf("unexpected basic auth %q %q %v", user, pass, ok)
	}
	if ua := got.Header.Get("User-Agent"); ua != "test-agent" {
		t.Fatalf("unexpected user agent %q", ua)
	}
}

func TestDoMergesQueryAndHeaders(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Reply{Status: http.StatusOK, Body: `{}`})
	defer rec.Close()

	c, _ := newTestClient(t, rec.URL, Config{
		Auth:   NewBearerAuth("Bearer tok"),
		Header: http.Header{"Accept": {"application/vnd.github+json"}},
	})
	_, err := c.DoJSON(context.Background(), Request{
		Path:   "repos/o/r/stargazers",
		Query:  url.Values{"per_page": {"10"}},
		Header: http.Header{"Accept": {"application/vnd.github.star+json"}},
	}, nil)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	got := rec.Last()
	if got.Query.Get("per_page") != "10" {
		t.Fatalf("missing query: %v", got.Query)
	}
	if accept := got.Header.Values("Accept"); len(accept) != 1 || accept[0] != "application/vnd.github.star+json" {
		t.Fatalf("request header should replace default, got %v", accept)
	}
	if auth := got.Header.Get("Authorization"); auth != "Bearer tok" {
		t.Fatalf("unexpected authorization %q", auth)
	}
}

func TestDoRejectsFormAndJSON(t *testing.T) {
	c, _ := newTestClient(t, "http://localhost", Config{})
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Form: url.Values{}, JSON: map[string]string{}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDoErrorKeepsStatusAndRawBody(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Reply{
		Status:  http.StatusBadRequest,
		Headers: map[string]string{"Content-Type": "text/plain", "X-Req": "req-1"},
		Body:    "bad things",
	})
	defer rec.Close()

	decoded := false
	c, _ := newTestClient(t, rec.URL, Config{
		Retry:            sdk.RetryConfig{MaxAttempts: 3},
		RequestIDHeaders: []string{"X-Missing", "X-Req"},
		DecodeError:      func(*sdk.APIError) { decoded = true },
	})
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	var apiErr sdk.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusBadRequest || string(apiErr.Body) != "bad things" || apiErr.RequestID != "req-1" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !decoded {
		t.Fatal("expected error decoder to run")
	}
	if rec.Count() != 1 {
		t.Fatalf("4xx must not be retried, saw %d requests", rec.Count())
	}
}

func TestDoRetriesServerErrorsForIdempotentMethods(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Reply{Status: http.StatusBadGateway, Body: "nope"},
		testutil.Reply{Status: http.StatusServiceUnavailable, Body: "nope"},
		testutil.Reply{Status: http.StatusOK, Body: `{"n":1}`},
	)
	defer rec.Close()

	var entries []sdk.LogEntry
	c, sl := newTestClient(t, rec.URL, Config{
		Retry: sdk.RetryConfig{MaxAttempts: 3, BaseBackoff: 10 * time.Millisecond, MaxBackoff: 20 * time.Millisecond},
		Telemetry: sdk.TelemetryHooks{OnLogEntry: func(_ context.Context, e sdk.LogEntry) {
			entries = append(entries, e)
		}},
	})
	var out struct {
		N int `json:"n"`
	}
	if _, err := c.DoJSON(context.Background(), Request{Path: "/x"}, &out); err != nil {
		t.Fatalf("do: %v", err)
	}
	if out.N != 1 || rec.Count() != 3 {
		t.Fatalf("expected success on third attempt, n=%d count=%d", out.N, rec.Count())
	}
	if len(sl.waits) != 2 {
		t.Fatalf("expected two backoff sleeps, got %v", sl.waits)
	}
	retries := 0
	for _, e := range entries {
		if e.Message == "http_retry" {
			retries++
		}
	}
	if retries != 2 {
		t.Fatalf("expected two http_retry log entries, got %d", retries)
	}
}

func TestDoDoesNotRetryPostByDefault(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Reply{Status: http.StatusInternalServerError, Body: "boom"})
	defer rec.Close()

	c, _ := newTestClient(t, rec.URL, Config{Retry: sdk.RetryConfig{MaxAttempts: 3}})
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Form: url.Values{"a": {"b"}}})
	if sdk.StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500 api error, got %v", err)
	}
	if rec.Count() != 1 {
		t.Fatalf("POST retried %d times", rec.Count())
	}

	c.retry.RetryPost = true
	_, _ = c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", Form: url.Values{"a": {"b"}}})
	if rec.Count() != 4 {
		t.Fatalf("expected three more attempts with RetryPost, total %d", rec.Count())
	}
}

func TestDoWaitsOnRateLimit(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Reply{Status: http.StatusTooManyRequests, Headers: map[string]string{"Retry-After": "2"}, Body: `{}`},
		testutil.Reply{Status: http.StatusOK, Body: `{}`},
	)
	defer rec.Close()

	c, sl := newTestClient(t, rec.URL, Config{
		Retry: sdk.RetryConfig{MaxAttempts: 2, MaxRateLimitWait: 5 * time.Second},
	})
	if _, err := c.DoJSON(context.Background(), Request{Method: http.MethodPost, Path: "/x", JSON: map[string]int{"a": 1}}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if diff := cmp.Diff([]time.Duration{2 * time.Second}, sl.waits); diff != "" {
		t.Fatalf("sleep mismatch (-want +got):\n%s", diff)
	}
}

func TestDoReturnsRateLimitWhenWaitTooLong(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	reset := strconv.FormatInt(now.Add(time.Hour).Unix(), 10)
	rec := testutil.NewRecorder(testutil.Reply{
		Status:  http.StatusForbidden,
		Headers: map[string]string{"X-RateLimit-Remaining": "0", "X-RateLimit-Reset": reset},
		Body:    `{"message":"API rate limit exceeded"}`,
	})
	defer rec.Close()

	c, sl := newTestClient(t, rec.URL, Config{
		Retry: sdk.RetryConfig{MaxAttempts: 3, MaxRateLimitWait: time.Minute},
	})
	c.now = func() time.Time { return now }
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	if sdk.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
	if rec.Count() != 1 || len(sl.waits) != 0 {
		t.Fatalf("expected no wait or retry, count=%d waits=%v", rec.Count(), sl.waits)
	}
}

func TestDoWrapsTransportErrors(t *testing.T) {
	rec := testutil.NewRecorder()
	base := rec.URL
	rec.Close()

	c, _ := newTestClient(t, base, Config{Retry: sdk.RetryConfig{MaxAttempts: 2}})
	_, err := c.Do(context.Background(), Request{Path: "/x"})
	var terr sdk.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if terr.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", terr.Attempts)
	}
}

func TestDoInjectsTraceparent(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Reply{Status: http.StatusNoContent})
	defer rec.Close()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	c, _ := newTestClient(t, rec.URL, Config{})
	if _, err := c.DoJSON(ctx, Request{Path: "/x"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	if got := rec.Last().Header.Get("Traceparent"); got != want {
		t.Fatalf("traceparent = %q, want %q", got, want)
	}
}

func TestDoReportsLatencyMetric(t *testing.T) {
	rec := testutil.NewRecorder(testutil.Reply{Status: http.StatusOK, Body: `{}`})
	defer rec.Close()

	var metrics []sdk.Metric
	c, _ := newTestClient(t, rec.URL, Config{Telemetry: sdk.TelemetryHooks{
		OnMetric: func(_ context.Context, m sdk.Metric) { metrics = append(metrics, m) },
	}})
	if _, err := c.DoJSON(context.Background(), Request{Path: "/metrics"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if len(metrics) != 1 || metrics[0].Name != "sdk_http_request_latency_ms" || metrics[0].Labels["status"] != "200" {
		t.Fatalf("unexpected metrics %+v", metrics)
	}
}

func TestDoWaitsOnSecondaryRateLimit(t *testing.T) {
	rec := testutil.NewRecorder(
		testutil.Reply{
			Status:  http.StatusForbidden,
			Headers: map[string]string{"Retry-After": "3", "X-RateLimit-Remaining": "4999"},
			Body:    `{"message":"You have exceeded a secondary rate limit"}`,
		},
		testutil.Reply{Status: http.StatusOK, Body: `{}`},
	)
	defer rec.Close()

	c, sl := newTestClient(t, rec.URL, Config{
		Retry: sdk.RetryConfig{MaxAttempts: 2, MaxRateLimitWait: time.Minute},
	})
	if _, err := c.DoJSON(context.Background(), Request{Path: "/x"}, nil); err != nil {
		t.Fatalf("do: %v", err)
	}
	if diff := cmp.Diff([]time.Duration{3 * time.Second}, sl.waits); diff != "" {
		t.Fatalf("sleep mismatch (-want +got):\n%s", diff)
	}
	if rec.Count() != 2 {
		t.Fatalf("expected replay after the wait, got %d requests", rec.Count())
	}
}

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name   string
		status int
		header http.Header
		want   bool
	}{
		{name: "429", status: http.StatusTooManyRequests, header: http.Header{}, want: true},
		{name: "primary limit", status: http.StatusForbidden, header: http.Header{"X-Ratelimit-Remaining": {"0"}}, want: true},
		{name: "secondary limit", status: http.StatusForbidden, header: http.Header{"Retry-After": {"60"}, "X-Ratelimit-Remaining": {"12"}}, want: true},
		{name: "plain forbidden", status: http.StatusForbidden, header: http.Header{"X-Ratelimit-Remaining": {"12"}}, want: false},
		{name: "unavailable with retry-after", status: http.StatusServiceUnavailable, header: http.Header{"Retry-After": {"5"}}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tc.status, Header: tc.header}
			if got := isRateLimited(resp); got != tc.want {
				t.Fatalf("isRateLimited = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRateLimitWait(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cases := []struct {
		name   string
		header http.Header
		want   time.Duration
		ok     bool
	}{
		{name: "retry-after seconds", header: http.Header{"Retry-After": {"7"}}, want: 7 * time.Second, ok: true},
		{name: "reset in future", header: http.Header{"X-Ratelimit-Reset": {strconv.FormatInt(now.Unix()+30, 10)}}, want: 31 * time.Second, ok: true},
		{name: "reset in past", header: http.Header{"X-Ratelimit-Reset": {strconv.FormatInt(now.Unix()-30, 10)}}, want: time.Second, ok: true},
		{name: "nothing", header: http.Header{}, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := rateLimitWait(tc.header, now)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("rateLimitWait = %v,%v want %v,%v", got, ok, tc.want, tc.ok)
			}
		})
	}
}
