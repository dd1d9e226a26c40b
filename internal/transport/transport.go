// Package transport is the HTTP request pipeline shared by the apisdk clients.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sdk "github.com/sdkcourse/apisdk/go"
)

// ErrorDecoder fills provider-specific fields of apiErr from its raw Body.
type ErrorDecoder func(apiErr *sdk.APIError)

// Config wires a Client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Auth       Authenticator
	UserAgent  string
	// Header is sent on every request unless the Request overrides it.
	Header    http.Header
	Telemetry sdk.TelemetryHooks
	Retry     sdk.RetryConfig
	Timeout   time.Duration
	// RequestIDHeaders are probed in order to fill APIError.RequestID.
	RequestIDHeaders []string
	DecodeError      ErrorDecoder
}

// Client sends requests against a single API base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       Authenticator
	userAgent  string
	header     http.Header
	telemetry  sdk.TelemetryHooks
	retry      sdk.RetryConfig
	timeout    time.Duration
	requestIDs []string
	decodeErr  ErrorDecoder

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	base, err := NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		auth:       cfg.Auth,
		userAgent:  cfg.UserAgent,
		header:     cfg.Header.Clone(),
		telemetry:  cfg.Telemetry,
		retry:      cfg.Retry.Normalized(),
		timeout:    cfg.Timeout,
		requestIDs: cfg.RequestIDHeaders,
		decodeErr:  cfg.DecodeError,
		now:        time.Now,
		sleep:      sleepContext,
	}, nil
}

// NormalizeBaseURL validates raw as an absolute http(s) URL and strips any trailing slash.
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("sdk: base URL required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("sdk: invalid base URL: %w", err)
	}
	if u.Scheme == "" {
		return "", errors.New("sdk: base URL missing scheme (http/https)")
	}
	if u.Host == "" {
		return "", errors.New("sdk: base URL missing host")
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return strings.TrimSuffix(u.String(), "/"), nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Telemetry returns the hooks the client reports to.
func (c *Client) Telemetry() sdk.TelemetryHooks { return c.telemetry }

// Request describes one logical API call. At most one of Form and JSON may be set.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	JSON   any
	Header http.Header
}

// Meta is the response metadata returned alongside a decoded body.
type Meta struct {
	StatusCode int
	Header     http.Header
}

type encodedBody struct {
	data        []byte
	contentType string
}

func (r Request) encode() (*encodedBody, error) {
	switch {
	case r.Form != nil && r.JSON != nil:
		return nil, errors.New("sdk: request cannot carry both form and JSON bodies")
	case r.Form != nil:
		return &encodedBody{data: []byte(r.Form.Encode()), contentType: "application/x-www-form-urlencoded"}, nil
	case r.JSON != nil:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("sdk: encode request body: %w", err)
		}
		return &encodedBody{data: data, contentType: "application/json"}, nil
	}
	return nil, nil
}

func (c *Client) buildURL(path string, query url.Values) string {
	var full string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		full = path
	} else {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		full = c.baseURL + path
	}
	if len(query) == 0 {
		return full
	}
	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + query.Encode()
}

func (c *Client) newHTTPRequest(ctx context.Context, r Request, body *encodedBody) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body.data)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, c.buildURL(r.Path, r.Query), reader)
	if err != nil {
		return nil, fmt.Errorf("sdk: build request: %w", err)
	}
	for k, vals := range c.header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	for k, vals := range r.Header {
		req.Header.Del(k)
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", body.contentType)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.auth != nil {
		c.auth.Apply(req)
	}
	injectTraceparent(ctx, req)
	return req, nil
}

func retryableMethod(method string, retryPost bool) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return retryPost
}

// Do sends r, retrying per the client's policy, and returns the successful
// response. The caller must close the body. Status >= 400 yields sdk.APIError.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	body, err := r.encode()
	if err != nil {
		return nil, err
	}
	retryable := retryableMethod(r.Method, c.retry.RetryPost)
	maxAttempts := c.retry.MaxAttempts

	var lastErr error
	var rateWait time.Duration
	waitingOnLimit := false
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := rateWait
			if !waitingOnLimit {
				delay = c.retry.BackoffDelay(attempt)
				c.telemetry.Log(ctx, sdk.LogLevelWarn, "http_retry", map[string]any{
					"method":  r.Method,
					"path":    r.Path,
					"attempt": attempt,
					"backoff": delay.String(),
					"error":   lastErr.Error(),
				})
			}
			waitingOnLimit = false
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, r, body, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if !retryable {
				return nil, sdk.TransportError{Attempts: attempt, Err: err}
			}
			continue
		}
		if resp.StatusCode < 400 {
			return resp, nil
		}

		apiErr := c.readAPIError(resp)
		lastErr = apiErr
		if isRateLimited(resp) {
			// a rate-limited request was never processed, so any method may be replayed
			wait, ok := rateLimitWait(resp.Header, c.now())
			if !ok || c.retry.MaxRateLimitWait == 0 || wait > c.retry.MaxRateLimitWait {
				return nil, apiErr
			}
			c.telemetry.Log(ctx, sdk.LogLevelWarn, "rate_limited", map[string]any{
				"path": r.Path,
				"wait": wait.String(),
			})
			rateWait, waitingOnLimit = wait, true
			continue
		}
		if resp.StatusCode < 500 || !retryable {
			return nil, apiErr
		}
	}

	var apiErr sdk.APIError
	if errors.As(lastErr, &apiErr) {
		return nil, apiErr
	}
	return nil, sdk.TransportError{Attempts: maxAttempts, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, r Request, body *encodedBody, attempt int) (*http.Response, error) {
	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if c.timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	req, err := c.newHTTPRequest(attemptCtx, r, body)
	if err != nil {
		cancel()
		return nil, err
	}
	if c.telemetry.OnHTTPRequest != nil {
		c.telemetry.OnHTTPRequest(ctx, req)
	}
	c.telemetry.Log(ctx, sdk.LogLevelInfo, "http_request", map[string]any{
		"method":  req.Method,
		"url":     req.URL.String(),
		"attempt": attempt,
	})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if c.telemetry.OnHTTPResponse != nil {
		c.telemetry.OnHTTPResponse(ctx, req, resp, err, latency)
	}
	labels := map[string]string{"path": req.URL.Path}
	if resp != nil {
		labels["status"] = strconv.Itoa(resp.StatusCode)
	}
	c.telemetry.Metric(ctx, "sdk_http_request_latency_ms", float64(latency.Milliseconds()), labels)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *Client) readAPIError(resp *http.Response) sdk.APIError {
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	apiErr := sdk.APIError{Status: resp.StatusCode, Body: data}
	for _, h := range c.requestIDs {
		if id := resp.Header.Get(h); id != "" {
			apiErr.RequestID = id
			break
		}
	}
	if c.decodeErr != nil && len(data) > 0 {
		c.decodeErr(&apiErr)
	}
	return apiErr
}

// DoJSON sends r and decodes a JSON response into out. out may be nil, and
// empty bodies (204 and friends) leave out untouched.
func (c *Client) DoJSON(ctx context.Context, r Request, out any) (Meta, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return Meta{}, err
	}
	defer resp.Body.Close()
	meta := Meta{StatusCode: resp.StatusCode, Header: resp.Header}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return meta, fmt.Errorf("sdk: read response: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return meta, fmt.Errorf("sdk: decode response: %w", err)
	}
	return meta, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
