package sdk

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for every HTTP response with status >= 400.
// Status and Body are always set; the remaining fields are filled in when the
// provider returned a recognizable error document.
type APIError struct {
	Status    int
	Code      string
	Message   string
	MoreInfo  string
	RequestID string
	// Body is the raw response body exactly as received.
	Body []byte
}

// Error implements the error interface.
func (e APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Body)
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// TransportError wraps a network-level failure that survived every retry attempt.
type TransportError struct {
	Attempts int
	Err      error
}

func (e TransportError) Error() string {
	return fmt.Sprintf("sdk: request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 when err is not an APIError.
func StatusCode(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsRateLimited reports whether err is an APIError with status 429.
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// IsUnauthorized reports whether the credentials were rejected (401 or 403).
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
