package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrCommandNotFound indicates the executable is not on PATH.
var ErrCommandNotFound = errors.New("command not found")

// DefaultWaitDelay bounds how long Run waits for output pipes to close
// after the process group has been killed.
const DefaultWaitDelay = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The command runs in
// its own process group, killed as a whole when ctx is done.
type ExecRunner struct {
	// WaitDelay overrides DefaultWaitDelay when positive.
	WaitDelay time.Duration
}

// Run executes name with args in dir (the current directory if empty).
// When ctx ends first, the returned error wraps ctx.Err().
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- binaries come from configuration
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		KillProcessGroup(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = DefaultWaitDelay
	if r != nil && r.WaitDelay > 0 {
		cmd.WaitDelay = r.WaitDelay
	}

	err := cmd.Run()
	if err == nil {
		return stdout.String(), stderr.String(), nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return "", "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("%s: %w", name, ctxErr)
	}
	return stdout.String(), stderr.String(), fmt.Errorf("%s: %w", name, err)
}

// LookPath reports the resolved path of name, wrapping ErrCommandNotFound.
func LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return p, nil
}
