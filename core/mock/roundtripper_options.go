package mock

import (
	"context"
	"time"
)

type roundTripperConfig struct {
	sideEffects map[string]func(context.Context) error
	delay       time.Duration
}

type RoundTripperOption func(*roundTripperConfig)

// RoundTripperWithSideEffect runs sideEffect for every request to path. A
// non-nil error is returned from RoundTrip, which looks like a transport
// failure to the caller.
func RoundTripperWithSideEffect(path string, sideEffect func(context.Context) error) RoundTripperOption {
	return func(c *roundTripperConfig) {
		_, ok := c.sideEffects[path]
		if ok {
			panic("side effect already registered for path: " + path)
		}

		c.sideEffects[path] = sideEffect
	}
}

// RoundTripperWithDelay delays every response, honoring request cancellation.
func RoundTripperWithDelay(d time.Duration) RoundTripperOption {
	return func(c *roundTripperConfig) {
		c.delay = d
	}
}
