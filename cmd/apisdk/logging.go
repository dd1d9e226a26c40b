package main

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	sdk "github.com/sdkcourse/apisdk/go"
)

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	out := w
	if !strings.EqualFold(strings.TrimSpace(format), "json") {
		out = zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func zerologLevel(level sdk.LogLevel) zerolog.Level {
	switch level {
	case sdk.LogLevelDebug:
		return zerolog.DebugLevel
	case sdk.LogLevelWarn:
		return zerolog.WarnLevel
	case sdk.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// telemetryHooks routes SDK telemetry into logger.
func telemetryHooks(logger zerolog.Logger) sdk.TelemetryHooks {
	return sdk.TelemetryHooks{
		OnLogEntry: func(_ context.Context, entry sdk.LogEntry) {
			logger.WithLevel(zerologLevel(entry.Level)).Fields(entry.Fields).Msg(entry.Message)
		},
		OnHTTPResponse: func(_ context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration) {
			ev := logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Dur("latency", latency)
			if resp != nil {
				ev = ev.Int("status", resp.StatusCode)
			}
			if err != nil {
				ev = ev.Err(err)
			}
			ev.Msg("http_response")
		},
	}
}
