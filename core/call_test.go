package core_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/chhttp/core"
	"github.com/kndndrj/chhttp/core/mock"
)

// recorder collects call states; onEvent runs on the call's goroutine.
type recorder struct {
	mu     sync.Mutex
	states []core.CallState
}

func (rec *recorder) add(state core.CallState) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.states = append(rec.states, state)
}

func (rec *recorder) get() []core.CallState {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]core.CallState(nil), rec.states...)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("call did not finish in expected time")
	}
}

func TestCall_Success(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper([]*mock.Response{{StatusCode: 200, Body: mock.NewResultBody(0, 10)}})
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	rec := new(recorder)
	call := core.QueryAsync(context.Background(), c, "SELECT * FROM test FORMAT JSON", func(state core.CallState, _ *core.Call[user]) {
		rec.add(state)
	})

	result, err := call.Result()
	r.NoError(err)
	r.Len(result.Data, 10)
	r.Equal(user{Name: "name_3", Age: 3}, result.Data[3])

	waitDone(t, call.Done())
	r.Equal([]core.CallState{
		core.CallStateExecuting,
		core.CallStateRetrieving,
		core.CallStateDone,
	}, rec.get())
	r.Equal(core.CallStateDone, call.GetState())
	r.NotEmpty(call.GetID())
	r.Positive(call.GetTimeTaken())
}

func TestCall_Cancel(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper([]*mock.Response{{StatusCode: 200}}, mock.RoundTripperWithDelay(10*time.Second))
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	rec := new(recorder)
	call := c.ExecuteAsync(context.Background(), "SELECT sleep(3)", func(state core.CallState, call *core.Call[struct{}]) {
		rec.add(state)
		// cancel as soon as the request is out
		if state == core.CallStateExecuting {
			call.Cancel()
		}
	})

	waitDone(t, call.Done())

	r.Equal([]core.CallState{core.CallStateExecuting, core.CallStateCanceled}, rec.get())
	r.ErrorIs(call.Err(), context.Canceled)
}

func TestCall_FailedQuery(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper([]*mock.Response{{StatusCode: 500, Body: "Syntax error"}})
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	rec := new(recorder)
	call := core.QueryAsync(context.Background(), c, "invalid sql FORMAT JSON", func(state core.CallState, _ *core.Call[user]) {
		rec.add(state)
	})

	_, err := call.Result()
	r.ErrorContains(err, "Syntax error")

	var serverErr *core.ServerError
	r.ErrorAs(err, &serverErr)
	r.Equal(4, rt.Calls())
	r.Equal([]core.CallState{core.CallStateExecuting, core.CallStateExecutingFailed}, rec.get())
}

func TestCall_FailedDecode(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper([]*mock.Response{{StatusCode: 200, Body: "not json"}})
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	rec := new(recorder)
	call := core.QueryAsync(context.Background(), c, "SELECT 1 FORMAT JSON", func(state core.CallState, _ *core.Call[user]) {
		rec.add(state)
	})

	result, err := call.Result()
	r.Nil(result)
	r.True(core.IsMalformed(err))
	r.Equal([]core.CallState{
		core.CallStateExecuting,
		core.CallStateRetrieving,
		core.CallStateRetrievingFailed,
	}, rec.get())
}

func TestCall_Precondition(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper(nil)
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	call := core.QueryAsync[user](context.Background(), c, "SELECT 1", nil)

	_, err := call.Result()
	r.ErrorIs(err, core.ErrMissingFormat)
	r.Equal(core.CallStateExecutingFailed, call.GetState())
	r.Zero(rt.Calls())
}

func TestCall_ParentDeadline(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper([]*mock.Response{{StatusCode: 200}}, mock.RoundTripperWithDelay(10*time.Second))
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	call := c.ExecuteAsync(ctx, "SELECT sleep(3)", nil)
	waitDone(t, call.Done())

	r.ErrorIs(call.Err(), context.DeadlineExceeded)
	r.Equal(core.CallStateExecutingFailed, call.GetState())
}

func TestCall_MarshalJSON(t *testing.T) {
	r := require.New(t)

	rt := mock.NewRoundTripper([]*mock.Response{{StatusCode: 200}})
	c := core.New(endpoint, core.WithHTTPClient(rt.Client()))

	call := c.ExecuteAsync(context.Background(), "SELECT 1", nil)
	waitDone(t, call.Done())

	b, err := json.Marshal(call)
	r.NoError(err)

	var persisted map[string]any
	r.NoError(json.Unmarshal(b, &persisted))
	r.Equal(string(call.GetID()), persisted["id"])
	r.Equal("SELECT 1", persisted["statement"])
	r.Equal("done", persisted["state"])
	r.NotContains(persisted, "error")
}

func TestCallState_String(t *testing.T) {
	r := require.New(t)

	for _, state := range []core.CallState{
		core.CallStateUnknown,
		core.CallStateExecuting,
		core.CallStateExecutingFailed,
		core.CallStateRetrieving,
		core.CallStateRetrievingFailed,
		core.CallStateDone,
		core.CallStateCanceled,
	} {
		r.Equal(state, core.CallStateFromString(state.String()))
	}

	r.Equal(core.CallStateUnknown, core.CallStateFromString("archived"))
	r.True(core.CallStateCanceled.IsTerminal())
	r.False(core.CallStateRetrieving.IsTerminal())
}
