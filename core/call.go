package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type CallID string

// Call is a statement running in the background. It goes through
// executing -> retrieving -> done, or stops in one of the failed states or
// canceled.
type Call[T any] struct {
	id        CallID
	statement string
	timestamp time.Time

	mu        sync.RWMutex
	state     CallState
	timeTaken time.Duration
	result    *QueryResult[T]
	err       error

	cancelFunc context.CancelFunc
	done       chan struct{}
}

// ExecuteAsync runs Execute in the background. onEvent is called on every
// state change, in order, from the call's goroutine.
func (c *Client) ExecuteAsync(ctx context.Context, statement string, onEvent func(CallState, *Call[struct{}])) *Call[struct{}] {
	exec := func(ctx context.Context) ([]byte, error) {
		return nil, c.Execute(ctx, statement)
	}
	decode := func([]byte) (*QueryResult[struct{}], error) {
		return &QueryResult[struct{}]{}, nil
	}

	return newCall(ctx, statement, exec, decode, onEvent)
}

// QueryAsync runs Query in the background. onEvent is called on every state
// change, in order, from the call's goroutine.
func QueryAsync[T any](ctx context.Context, c *Client, statement string, onEvent func(CallState, *Call[T])) *Call[T] {
	exec := func(ctx context.Context) ([]byte, error) {
		return c.QueryRaw(ctx, statement)
	}

	return newCall(ctx, statement, exec, DecodeResult[T], onEvent)
}

func newCall[T any](
	parent context.Context,
	statement string,
	exec func(context.Context) ([]byte, error),
	decode func([]byte) (*QueryResult[T], error),
	onEvent func(CallState, *Call[T]),
) *Call[T] {
	ctx, cancel := context.WithCancel(parent)

	c := &Call[T]{
		id:         CallID(uuid.New().String()),
		statement:  statement,
		timestamp:  time.Now(),
		state:      CallStateUnknown,
		cancelFunc: cancel,
		done:       make(chan struct{}),
	}

	go c.run(ctx, exec, decode, onEvent)

	return c
}

func (c *Call[T]) run(
	ctx context.Context,
	exec func(context.Context) ([]byte, error),
	decode func([]byte) (*QueryResult[T], error),
	onEvent func(CallState, *Call[T]),
) {
	defer close(c.done)
	defer c.cancelFunc()

	emit := func(state CallState, result *QueryResult[T], err error) {
		c.mu.Lock()
		c.state = state
		c.result = result
		c.err = err
		if state.IsTerminal() {
			c.timeTaken = time.Since(c.timestamp)
		}
		c.mu.Unlock()

		if onEvent != nil {
			onEvent(state, c)
		}
	}

	emit(CallStateExecuting, nil, nil)

	body, err := exec(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			emit(CallStateCanceled, nil, err)
			return
		}
		emit(CallStateExecutingFailed, nil, err)
		return
	}

	emit(CallStateRetrieving, nil, nil)

	result, err := decode(body)
	if err != nil {
		emit(CallStateRetrievingFailed, nil, err)
		return
	}

	emit(CallStateDone, result, nil)
}

func (c *Call[T]) GetID() CallID {
	return c.id
}

func (c *Call[T]) GetStatement() string {
	return c.statement
}

func (c *Call[T]) GetState() CallState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Call[T]) GetTimeTaken() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeTaken
}

func (c *Call[T]) GetTimestamp() time.Time {
	return c.timestamp
}

func (c *Call[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Done returns a channel that is closed when the call finishes.
func (c *Call[T]) Done() <-chan struct{} {
	return c.done
}

// Cancel aborts the request and any pending retry. It has no effect once
// the response has been received.
func (c *Call[T]) Cancel() {
	if c.GetState() > CallStateExecuting {
		return
	}
	c.cancelFunc()
}

// Result waits for the call to finish and returns its outcome.
func (c *Call[T]) Result() (*QueryResult[T], error) {
	<-c.done

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result, c.err
}

// callPersistent is the JSON form of a call, used for call logs.
type callPersistent struct {
	ID        string `json:"id"`
	Statement string `json:"statement"`
	State     string `json:"state"`
	TimeTaken int64  `json:"time_taken_us"`
	Timestamp int64  `json:"timestamp_us"`
	Error     string `json:"error,omitempty"`
}

func (c *Call[T]) MarshalJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	errMsg := ""
	if c.err != nil {
		errMsg = c.err.Error()
	}

	return json.Marshal(&callPersistent{
		ID:        string(c.id),
		Statement: c.statement,
		State:     c.state.String(),
		TimeTaken: c.timeTaken.Microseconds(),
		Timestamp: c.timestamp.UnixMicro(),
		Error:     errMsg,
	})
}
