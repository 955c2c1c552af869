// Package testhelpers provides helpers for integration tests.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"github.com/kndndrj/chhttp/core"
)

// eventTimeout is the maximum time to wait for a call to finish
const eventTimeout = 30 * time.Second

// errTimeOut is an error for when a call did not finish within the expected time.
var errTimeOut = fmt.Errorf("call did not finish within %v", eventTimeout)

// GetContainerProvider returns the container provider type to use for the tests.
// If we detect podman is available, we use it, otherwise we use docker.
func GetContainerProvider() testcontainers.ProviderType {
	if _, err := exec.LookPath("podman"); err == nil {
		fmt.Println("Podman detected. Remember to set TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED=true;")
		return testcontainers.ProviderPodman
	}
	return testcontainers.ProviderDocker
}

// WaitCall blocks until the call is done and returns every state it went
// through.
func WaitCall[T any](t *testing.T, states <-chan core.CallState, call *core.Call[T]) ([]core.CallState, error) {
	t.Helper()

	out := make([]core.CallState, 0)

	select {
	case <-call.Done():
	case <-time.After(eventTimeout):
		return nil, errTimeOut
	}

	// onEvent runs on the call's goroutine before Done is closed
	for {
		select {
		case s := <-states:
			out = append(out, s)
		default:
			require.True(t, call.GetState().IsTerminal(), "call ended in %s", call.GetState())
			return out, nil
		}
	}
}

// StateRecorder returns a buffered channel and an event callback feeding it.
func StateRecorder[T any]() (chan core.CallState, func(core.CallState, *core.Call[T])) {
	ch := make(chan core.CallState, 16)
	return ch, func(s core.CallState, _ *core.Call[T]) {
		ch <- s
	}
}

// GetTestDataPath returns the path to the testdata directory.
func GetTestDataPath() (string, error) {
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to get current file path")
	}

	return filepath.Join(filepath.Dir(currentFile), "testdata"), nil
}

// GetTestDataStatements reads a sql file from the testdata directory and
// splits it into statements.
func GetTestDataStatements(filename string) ([]string, error) {
	testDataPath, err := GetTestDataPath()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(filepath.Join(testDataPath, filename))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, stmt := range strings.Split(string(raw), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out, nil
}
