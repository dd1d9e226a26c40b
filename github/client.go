// Package github is a small GitHub REST client focused on stars: who starred
// a repository, what a user starred, star history and trending searches.
package github

import (
	"encoding/json"
	"net/http"
	"time"

	sdk "github.com/sdkcourse/apisdk/go"
	"github.com/sdkcourse/apisdk/go/headers"
	"github.com/sdkcourse/apisdk/go/internal/transport"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// APIVersion is the REST API version pinned on every request.
	APIVersion = "2022-11-28"

	mediaTypeJSON = "application/vnd.github+json"
	mediaTypeStar = "application/vnd.github.star+json"

	maxPerPage = 100
)

// Client groups the GitHub service clients.
type Client struct {
	http *transport.Client
	now  func() time.Time

	Stars  *StarsClient
	Repos  *ReposClient
	Issues *IssuesClient
}

// NewClient returns a client authenticated with token. An empty token gives
// anonymous access, which only works for public read endpoints.
// Idempotent requests are retried with sdk.DefaultRetryConfig unless overridden.
func NewClient(token string, opts ...sdk.Option) (*Client, error) {
	o := sdk.ResolveOptions(sdk.ClientOptions{BaseURL: DefaultBaseURL}, opts)
	hc, err := transport.New(transport.Config{
		BaseURL:    o.BaseURL,
		HTTPClient: o.HTTPClient,
		Auth:       transport.NewBearerAuth(token),
		UserAgent:  o.UserAgent,
		Header: http.Header{
			"Accept":                 {mediaTypeJSON},
			headers.GitHubAPIVersion: {APIVersion},
		},
		Telemetry:        o.Telemetry,
		Retry:            o.RetryPolicy(sdk.DefaultRetryConfig()),
		Timeout:          o.Timeout,
		RequestIDHeaders: []string{headers.GitHubRequestID},
		DecodeError:      decodeError,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{http: hc, now: time.Now}
	c.Stars = &StarsClient{client: c}
	c.Repos = &ReposClient{client: c}
	c.Issues = &IssuesClient{client: c}
	return c, nil
}

func decodeError(apiErr *sdk.APIError) {
	var payload struct {
		Message          string `json:"message"`
		DocumentationURL string `json:"documentation_url"`
	}
	if err := json.Unmarshal(apiErr.Body, &payload); err != nil {
		return
	}
	apiErr.Message = payload.Message
	apiErr.MoreInfo = payload.DocumentationURL
}
