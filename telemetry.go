package sdk

import (
	"context"
	"net/http"
	"time"
)

// TelemetryHooks lets an application observe client traffic. Every hook is
// optional; the zero value observes nothing and the SDK imports no logger.
type TelemetryHooks struct {
	// OnHTTPRequest sees each attempt just before it goes on the wire.
	OnHTTPRequest func(ctx context.Context, req *http.Request)
	// OnHTTPResponse sees the outcome of each attempt. resp is nil when err is set.
	OnHTTPResponse func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration)
	// OnLogEntry receives retry, rate-limit and request events.
	OnLogEntry func(ctx context.Context, entry LogEntry)
	// OnMetric receives request latency samples.
	OnMetric func(ctx context.Context, metric Metric)
}

// LogLevel is the severity attached to a LogEntry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogEntry is one structured event; Message is a short snake_case name.
type LogEntry struct {
	Level   LogLevel
	Message string
	Fields  map[string]any
}

// Metric is one named sample with string labels.
type Metric struct {
	Name   string
	Value  float64
	Labels map[string]string
}

// Log emits an entry through OnLogEntry, if installed.
func (t TelemetryHooks) Log(ctx context.Context, level LogLevel, msg string, fields map[string]any) {
	if t.OnLogEntry == nil {
		return
	}
	t.OnLogEntry(ctx, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Metric emits a sample through OnMetric, if installed.
func (t TelemetryHooks) Metric(ctx context.Context, name string, value float64, labels map[string]string) {
	if t.OnMetric == nil {
		return
	}
	t.OnMetric(ctx, Metric{Name: name, Value: value, Labels: labels})
}
