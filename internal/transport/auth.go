package transport

import (
	"net/http"
	"strings"
)

// Authenticator decorates an outgoing request with credentials.
type Authenticator interface {
	Apply(req *http.Request)
}

// Chain applies several authenticators in order.
type Chain []Authenticator

func (c Chain) Apply(req *http.Request) {
	for _, a := range c {
		if a == nil {
			continue
		}
		a.Apply(req)
	}
}

// BasicAuth sends an HTTP Basic Authorization header.
type BasicAuth struct {
	Username string
	Password string
}

func (b BasicAuth) Apply(req *http.Request) {
	if b.Username == "" && b.Password == "" {
		return
	}
	req.SetBasicAuth(b.Username, b.Password)
}

// BearerAuth sends "Authorization: Bearer <token>".
type BearerAuth struct {
	Token string
}

// NewBearerAuth trims whitespace and a redundant "Bearer " prefix from token.
func NewBearerAuth(token string) BearerAuth {
	t := strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToLower(t), "bearer ") {
		t = strings.TrimSpace(t[7:])
	}
	return BearerAuth{Token: t}
}

func (b BearerAuth) Apply(req *http.Request) {
	if b.Token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+b.Token)
}
