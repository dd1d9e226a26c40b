package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the delivery state reported for a message.
type Status string

const (
	StatusAccepted    Status = "accepted"
	StatusQueued      Status = "queued"
	StatusSending     Status = "sending"
	StatusSent        Status = "sent"
	StatusDelivered   Status = "delivered"
	StatusUndelivered Status = "undelivered"
	StatusFailed      Status = "failed"
	StatusReceived    Status = "received"
)

// Terminal reports whether no further status transitions are expected.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusUndelivered, StatusFailed, StatusReceived:
		return true
	}
	return false
}

// Message is a message resource as returned by the API.
type Message struct {
	SID                 string              `json:"sid"`
	AccountSID          string              `json:"account_sid"`
	MessagingServiceSID string              `json:"messaging_service_sid,omitempty"`
	To                  string              `json:"to"`
	From                string              `json:"from"`
	Body                string              `json:"body"`
	Status              Status              `json:"status"`
	Direction           string              `json:"direction"`
	NumSegments         string              `json:"num_segments"`
	NumMedia            string              `json:"num_media"`
	Price               decimal.NullDecimal `json:"price"`
	PriceUnit           string              `json:"price_unit"`
	ErrorCode           *int                `json:"error_code"`
	ErrorMessage        *string             `json:"error_message"`
	APIVersion          string              `json:"api_version"`
	DateCreated         Time                `json:"date_created"`
	DateSent            Time                `json:"date_sent"`
	DateUpdated         Time                `json:"date_updated"`
	URI                 string              `json:"uri"`
}

// MessageList is one page of a message listing.
type MessageList struct {
	Messages        []Message `json:"messages"`
	Page            int       `json:"page"`
	PageSize        int       `json:"page_size"`
	Start           int       `json:"start"`
	End             int       `json:"end"`
	URI             string    `json:"uri"`
	FirstPageURI    string    `json:"first_page_uri"`
	NextPageURI     string    `json:"next_page_uri"`
	PreviousPageURI string    `json:"previous_page_uri"`
}

// HasNextPage reports whether the server advertised another page.
func (l MessageList) HasNextPage() bool { return l.NextPageURI != "" }

// Time is a timestamp encoded in RFC 2822 form ("Mon, 16 Aug 2010 03:45:01 +0000").
// The zero value marshals as null.
type Time struct {
	time.Time
}

const rfc2822 = time.RFC1123Z

func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("messaging: time must be a string: %w", err)
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(rfc2822, raw)
	if err != nil {
		if parsed, err = time.Parse(time.RFC3339, raw); err != nil {
			return fmt.Errorf("messaging: parse time %q: %w", raw, err)
		}
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(rfc2822))
}
