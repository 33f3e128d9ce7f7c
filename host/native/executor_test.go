package native

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor answers font catalog commands from canned output keyed by
// command name and records every invocation.
type mockExecutor struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   [][]string
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

func (m *mockExecutor) Execute(_ context.Context, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, append([]string{name}, args...))

	if err, ok := m.errs[name]; ok {
		return "", err
	}
	if out, ok := m.outputs[name]; ok {
		return out, nil
	}

	return "", fmt.Errorf("command %q not configured in mock", name)
}

func (m *mockExecutor) setOutput(command, output string) {
	m.outputs[command] = output
}

func (m *mockExecutor) setError(command string, err error) {
	m.errs[command] = err
}

// invoked returns how many times command ran.
func (m *mockExecutor) invoked(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, call := range m.calls {
		if call[0] == command {
			n++
		}
	}

	return n
}

func TestDefaultExecutorHonorsExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := (&defaultCommandExecutor{}).Execute(ctx, "echo", "fonts")
	assert.Error(t, err)
}

func TestExecuteCommandDefaultsExecutor(t *testing.T) {
	assert.NotPanics(t, func() {
		// echo may be missing on minimal systems; only a panic is a failure
		_, _ = executeCommand(context.Background(), nil, "echo", "fonts")
	})
}

func TestExecuteCommandUsesExecutor(t *testing.T) {
	mock := newMockExecutor()
	mock.setOutput("fc-list", "Arial")
	mock.setError("reg", errors.New("access denied"))

	out, err := executeCommand(context.Background(), mock, "fc-list", ":", "family")
	require.NoError(t, err)
	assert.Equal(t, "Arial", out)

	_, err = executeCommand(context.Background(), mock, "reg", "query")
	assert.EqualError(t, err, "access denied")

	assert.Equal(t, 1, mock.invoked("fc-list"))
	assert.Equal(t, [][]string{{"fc-list", ":", "family"}, {"reg", "query"}}, mock.calls)
}
