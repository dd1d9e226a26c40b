package messaging

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sdkcourse/apisdk/go/headers"
	"github.com/sdkcourse/apisdk/go/internal/transport"
	"github.com/sdkcourse/apisdk/go/routes"
)

// dateLayout is the YYYY-MM-DD form accepted by the DateSent filters.
const dateLayout = "2006-01-02"

// SendMessageRequest mirrors POST /Messages.json.
type SendMessageRequest struct {
	To   string
	From string
	Body string
	// MessagingServiceSID may replace From.
	MessagingServiceSID string
	StatusCallback      string
	MediaURLs           []string
}

func (r SendMessageRequest) form() (url.Values, error) {
	to := strings.TrimSpace(r.To)
	from := strings.TrimSpace(r.From)
	svc := strings.TrimSpace(r.MessagingServiceSID)
	if to == "" {
		return nil, errors.New("sdk: message recipient (to) required")
	}
	if from == "" && svc == "" {
		return nil, errors.New("sdk: message sender (from or messaging service sid) required")
	}
	if r.Body == "" && len(r.MediaURLs) == 0 {
		return nil, errors.New("sdk: message body or media url required")
	}
	form := url.Values{}
	form.Set("To", to)
	if from != "" {
		form.Set("From", from)
	}
	if svc != "" {
		form.Set("MessagingServiceSid", svc)
	}
	if r.Body != "" {
		form.Set("Body", r.Body)
	}
	if cb := strings.TrimSpace(r.StatusCallback); cb != "" {
		form.Set("StatusCallback", cb)
	}
	for _, m := range r.MediaURLs {
		if m = strings.TrimSpace(m); m != "" {
			form.Add("MediaUrl", m)
		}
	}
	return form, nil
}

// ListMessagesParams are passed through as query filters. No page following
// is done; use NextPageURI on the result to see whether more exist.
type ListMessagesParams struct {
	To             string
	From           string
	DateSent       time.Time
	DateSentBefore time.Time
	DateSentAfter  time.Time
	PageSize       int
	Page           int
	PageToken      string
	// Extra carries any other filter verbatim.
	Extra url.Values
}

func (p ListMessagesParams) query() url.Values {
	q := url.Values{}
	for k, vals := range p.Extra {
		for _, v := range vals {
			q.Add(k, v)
		}
	}
	if p.To != "" {
		q.Set("To", p.To)
	}
	if p.From != "" {
		q.Set("From", p.From)
	}
	if !p.DateSent.IsZero() {
		q.Set("DateSent", p.DateSent.Format(dateLayout))
	}
	if !p.DateSentBefore.IsZero() {
		q.Set("DateSent<", p.DateSentBefore.Format(dateLayout))
	}
	if !p.DateSentAfter.IsZero() {
		q.Set("DateSent>", p.DateSentAfter.Format(dateLayout))
	}
	if p.PageSize > 0 {
		q.Set("PageSize", strconv.Itoa(p.PageSize))
	}
	if p.Page > 0 {
		q.Set("Page", strconv.Itoa(p.Page))
	}
	if p.PageToken != "" {
		q.Set("PageToken", p.PageToken)
	}
	return q
}

// MessagesClient wraps the message endpoints.
type MessagesClient struct {
	client *Client
}

func (m *MessagesClient) ready() error {
	if m == nil || m.client == nil || m.client.http == nil {
		return fmt.Errorf("sdk: messages client not initialized")
	}
	return nil
}

// Send creates an outbound message.
func (m *MessagesClient) Send(ctx context.Context, req SendMessageRequest) (Message, error) {
	if err := m.ready(); err != nil {
		return Message{}, err
	}
	form, err := req.form()
	if err != nil {
		return Message{}, err
	}
	r := transport.Request{Method: http.MethodPost, Path: routes.Messages, Form: form}
	if m.client.retry.RetryPost && m.client.retry.MaxAttempts > 1 {
		// same token on every attempt so the server drops duplicates
		r.Header = http.Header{headers.IdempotencyToken: {uuid.NewString()}}
	}
	var msg Message
	if _, err := m.client.http.DoJSON(ctx, r, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Fetch returns the message with the given SID.
func (m *MessagesClient) Fetch(ctx context.Context, sid string) (Message, error) {
	if err := m.ready(); err != nil {
		return Message{}, err
	}
	sid = strings.TrimSpace(sid)
	if sid == "" {
		return Message{}, errors.New("sdk: message sid required")
	}
	var msg Message
	path := routes.Expand(routes.MessageBySID, "sid", sid)
	if _, err := m.client.http.DoJSON(ctx, transport.Request{Method: http.MethodGet, Path: path}, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// List returns one page of messages matching params.
func (m *MessagesClient) List(ctx context.Context, params ListMessagesParams) (MessageList, error) {
	if err := m.ready(); err != nil {
		return MessageList{}, err
	}
	var list MessageList
	r := transport.Request{Method: http.MethodGet, Path: routes.Messages, Query: params.query()}
	if _, err := m.client.http.DoJSON(ctx, r, &list); err != nil {
		return MessageList{}, err
	}
	return list, nil
}
