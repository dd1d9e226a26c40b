package sdk

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAPIErrorMessage(t *testing.T) {
	cases := []struct {
		err  APIError
		want string
	}{
		{APIError{Status: 400, Code: "21211", Message: "invalid To"}, "api error 400 (21211): invalid To"},
		{APIError{Status: 502, Body: []byte("gateway")}, "api error 502: gateway"},
		{APIError{Status: 404}, "api error 404: Not Found"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestErrorHelpersUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("fetch: %w", APIError{Status: http.StatusNotFound})
	if !IsNotFound(wrapped) || StatusCode(wrapped) != 404 {
		t.Fatalf("expected wrapped 404 to be detected")
	}
	if IsRateLimited(wrapped) || IsUnauthorized(wrapped) {
		t.Fatal("unexpected classification")
	}
	if !IsRateLimited(APIError{Status: http.StatusTooManyRequests}) {
		t.Fatal("expected rate limited")
	}
	if !IsUnauthorized(APIError{Status: http.StatusForbidden}) {
		t.Fatal("expected unauthorized")
	}
	if StatusCode(errors.New("plain")) != 0 {
		t.Fatal("plain errors carry no status")
	}
}

func TestTransportErrorUnwraps(t *testing.T) {
	base := errors.New("connection refused")
	err := TransportError{Attempts: 3, Err: base}
	if !errors.Is(err, base) {
		t.Fatal("expected TransportError to unwrap")
	}
	if !strings.Contains(err.Error(), "3 attempt") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
