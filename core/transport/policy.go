package transport

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Policy bounds how often a rejected request is resent.
//
// Only responses with a non-2xx status are retried. A request that never
// got a response (connection refused, DNS, TLS, timeout) fails on the spot.
// With a zero WaitMin retries are immediate, otherwise the wait doubles on
// every attempt and is capped by WaitMax.
type Policy struct {
	MaxRetries int
	WaitMin    time.Duration
	WaitMax    time.Duration
}

type PolicyOption func(*Policy)

// DefaultPolicy retries three times without waiting.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
	}
}

func NewPolicy(opts ...PolicyOption) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func WithMaxRetries(n int) PolicyOption {
	return func(p *Policy) {
		if n < 0 {
			n = 0
		}
		p.MaxRetries = n
	}
}

// WithBackoff enables exponential backoff between min and max.
func WithBackoff(min, max time.Duration) PolicyOption {
	return func(p *Policy) {
		if max < min {
			max = min
		}
		p.WaitMin = min
		p.WaitMax = max
	}
}

// Attempts is the total number of requests sent before giving up.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

func (p Policy) backoff(min, max time.Duration, attempt int, resp *http.Response) time.Duration {
	if min <= 0 {
		return 0
	}
	return retryablehttp.DefaultBackoff(min, max, attempt, resp)
}
