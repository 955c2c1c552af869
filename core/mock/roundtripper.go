package mock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

var _ http.RoundTripper = (*RoundTripper)(nil)

// Response is a scripted server answer.
type Response struct {
	StatusCode int
	Body       string
	Header     http.Header
}

// Request is a request as seen by the mocked server.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// RoundTripper replays scripted responses in order and records every request
// it receives. When the script runs out, the last response is repeated.
type RoundTripper struct {
	responses []*Response
	config    *roundTripperConfig

	mu       sync.Mutex
	requests []*Request
}

func NewRoundTripper(responses []*Response, opts ...RoundTripperOption) *RoundTripper {
	config := &roundTripperConfig{
		sideEffects: make(map[string]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(config)
	}

	return &RoundTripper{
		responses: responses,
		config:    config,
	}
}

// Client returns an http.Client using the round tripper.
func (rt *RoundTripper) Client() *http.Client {
	return &http.Client{Transport: rt}
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	recorded := &Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("io.ReadAll: %w", err)
		}
		recorded.Body = body
	}

	rt.mu.Lock()
	index := len(rt.requests)
	rt.requests = append(rt.requests, recorded)
	rt.mu.Unlock()

	if rt.config.delay > 0 {
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(rt.config.delay):
		}
	}

	eff, ok := rt.config.sideEffects[req.URL.Path]
	if ok {
		if err := eff(req.Context()); err != nil {
			return nil, err
		}
	}

	resp := &Response{StatusCode: http.StatusOK}
	if len(rt.responses) > 0 {
		resp = rt.responses[min(index, len(rt.responses)-1)]
	}

	header := resp.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(resp.Body)),
		ContentLength: int64(len(resp.Body)),
		Request:       req,
	}, nil
}

// Calls returns the number of requests received so far.
func (rt *RoundTripper) Calls() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.requests)
}

// Requests returns a copy of all received requests.
func (rt *RoundTripper) Requests() []*Request {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return append([]*Request(nil), rt.requests...)
}

// Repeat returns n copies of the same response.
func Repeat(resp *Response, n int) []*Response {
	out := make([]*Response, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, resp)
	}
	return out
}

// NewResultBody builds a FORMAT JSON body with name/age rows in form of:
//
//	{ "name": "name_<index>", "age": <index> }
//
// where the first index is "from" and the last one is one less than "to".
func NewResultBody(from, to int) string {
	var rows []string
	for i := from; i < to; i++ {
		rows = append(rows, fmt.Sprintf(`{"name":"name_%d","age":%d}`, i, i))
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, `{"meta":[{"name":"name","type":"String"},{"name":"age","type":"Int32"}],`)
	fmt.Fprintf(&b, `"data":[%s],`, strings.Join(rows, ","))
	fmt.Fprintf(&b, `"rows":%d,`, len(rows))
	fmt.Fprintf(&b, `"statistics":{"elapsed":0.000412,"rows_read":%d,"bytes_read":%d}}`, len(rows), 16*len(rows))

	return b.String()
}
