package native

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// defaultCommandTimeout bounds a single command when the caller's context
// carries no earlier deadline.
const defaultCommandTimeout = 3 * time.Second

// CommandExecutor runs system commands. Replace it with [Host.WithExecutor]
// to stub the font catalog commands in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}

// defaultCommandExecutor implements CommandExecutor using actual system command execution.
type defaultCommandExecutor struct {
	TimeOut time.Duration
}

// Execute runs a system command with a timeout and returns its trimmed output.
func (e *defaultCommandExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	timeout := defaultCommandTimeout
	if e.TimeOut > 0 {
		timeout = e.TimeOut
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(timeoutCtx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("command %q failed: %w", name, err)
	}

	return strings.TrimSpace(string(output)), nil
}

// executeCommand runs name through executor, falling back to the default
// executor when none is configured.
func executeCommand(ctx context.Context, executor CommandExecutor, name string, args ...string) (string, error) {
	if executor == nil {
		executor = &defaultCommandExecutor{TimeOut: defaultCommandTimeout}
	}

	return executor.Execute(ctx, name, args...)
}
