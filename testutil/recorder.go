// Package testutil provides helpers for SDK tests.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
)

// RecordedRequest is a snapshot of one request received by a Recorder.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Form parses Body as application/x-www-form-urlencoded.
func (r RecordedRequest) Form() url.Values {
	values, _ := url.ParseQuery(string(r.Body))
	return values
}

// Reply is one canned response.
type Reply struct {
	Status  int
	Headers map[string]string
	Body    string
}

// Recorder is an httptest server that records requests and answers from a
// queue of replies. Once the queue is drained the last reply repeats.
type Recorder struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	replies  []Reply
	handler  http.HandlerFunc
}

// NewRecorder starts a Recorder answering with replies in order.
func NewRecorder(replies ...Reply) *Recorder {
	rec := &Recorder{replies: replies}
	rec.Server = httptest.NewServer(http.HandlerFunc(rec.serve))
	return rec
}

// NewRecorderFunc starts a Recorder that delegates responses to handler.
func NewRecorderFunc(handler http.HandlerFunc) *Recorder {
	rec := &Recorder{handler: handler}
	rec.Server = httptest.NewServer(http.HandlerFunc(rec.serve))
	return rec
}

func (r *Recorder) serve(w http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	r.requests = append(r.requests, RecordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	index := len(r.requests) - 1
	handler := r.handler
	var reply Reply
	if len(r.replies) > 0 {
		if index < len(r.replies) {
			reply = r.replies[index]
		} else {
			reply = r.replies[len(r.replies)-1]
		}
	}
	r.mu.Unlock()

	if handler != nil {
		handler(w, req)
		return
	}
	for k, v := range reply.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" && reply.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, reply.Body)
}

// Requests returns a copy of everything received so far.
func (r *Recorder) Requests() []RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedRequest(nil), r.requests...)
}

// Count returns the number of requests received.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// Last returns the most recent request. It panics when nothing was received.
func (r *Recorder) Last() RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}
