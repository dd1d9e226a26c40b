package transport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sdkcourse/apisdk/go/headers"
)

// isRateLimited reports whether resp signals an exhausted rate limit.
// GitHub answers primary limits with 403 and X-RateLimit-Remaining: 0, and
// secondary limits with 403 and Retry-After while requests remain.
func isRateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return strings.TrimSpace(resp.Header.Get(headers.RateLimitRemaining)) == "0" ||
			strings.TrimSpace(resp.Header.Get(headers.RetryAfter)) != ""
	}
	return false
}

// rateLimitWait derives how long to pause from Retry-After (seconds) or
// X-RateLimit-Reset (unix seconds). ok is false when neither header is usable.
func rateLimitWait(h http.Header, now time.Time) (wait time.Duration, ok bool) {
	if raw := strings.TrimSpace(h.Get(headers.RetryAfter)); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second, true
		}
		if at, err := http.ParseTime(raw); err == nil {
			return clampZero(at.Sub(now)), true
		}
	}
	if raw := strings.TrimSpace(h.Get(headers.RateLimitReset)); raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil && unix > 0 {
			// one extra second so the window has definitely rolled over
			return clampZero(time.Unix(unix, 0).Sub(now)) + time.Second, true
		}
	}
	return 0, false
}

func clampZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
