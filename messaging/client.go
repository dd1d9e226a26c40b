// Package messaging is a thin client for a Twilio-style SMS messaging API:
// send a message, fetch one by SID, list messages with optional filters.
package messaging

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	sdk "github.com/sdkcourse/apisdk/go"
	"github.com/sdkcourse/apisdk/go/headers"
	"github.com/sdkcourse/apisdk/go/internal/transport"
	"github.com/sdkcourse/apisdk/go/routes"
)

// DefaultBaseURL is the API root; the account path is appended to it.
const DefaultBaseURL = "https://api.twilio.com/2010-04-01"

// Client holds the account-scoped base URL and Basic credentials.
type Client struct {
	accountSID string
	http       *transport.Client
	retry      sdk.RetryConfig

	Messages *MessagesClient
}

// NewClient builds a client from an account SID and auth token.
// Requests are sent once; pass sdk.WithRetry to opt into retries.
func NewClient(accountSID, authToken string, opts ...sdk.Option) (*Client, error) {
	sid := strings.TrimSpace(accountSID)
	token := strings.TrimSpace(authToken)
	if sid == "" {
		return nil, errors.New("sdk: account sid required")
	}
	if token == "" {
		return nil, errors.New("sdk: auth token required")
	}
	o := sdk.ResolveOptions(sdk.ClientOptions{BaseURL: DefaultBaseURL}, opts)
	root, err := transport.NormalizeBaseURL(o.BaseURL)
	if err != nil {
		return nil, err
	}
	retry := o.RetryPolicy(sdk.NoRetry())
	hc, err := transport.New(transport.Config{
		BaseURL:          root + routes.Expand(routes.MessagingAccount, "account_sid", sid),
		HTTPClient:       o.HTTPClient,
		Auth:             transport.BasicAuth{Username: sid, Password: token},
		UserAgent:        o.UserAgent,
		Telemetry:        o.Telemetry,
		Retry:            retry,
		Timeout:          o.Timeout,
		RequestIDHeaders: []string{headers.TwilioRequestID},
		DecodeError:      decodeError,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{accountSID: sid, http: hc, retry: retry}
	c.Messages = &MessagesClient{client: c}
	return c, nil
}

// AccountSID returns the account the client is scoped to.
func (c *Client) AccountSID() string { return c.accountSID }

// BaseURL returns the account-scoped base URL.
func (c *Client) BaseURL() string { return c.http.BaseURL() }

// decodeError reads the provider's {"code","message","more_info","status"} document.
// Non-JSON bodies are left as raw Body only.
func decodeError(apiErr *sdk.APIError) {
	var payload struct {
		Code     int    `json:"code"`
		Message  string `json:"message"`
		MoreInfo string `json:"more_info"`
	}
	if err := json.Unmarshal(apiErr.Body, &payload); err != nil {
		return
	}
	if payload.Code != 0 {
		apiErr.Code = strconv.Itoa(payload.Code)
	}
	apiErr.Message = payload.Message
	apiErr.MoreInfo = payload.MoreInfo
}
