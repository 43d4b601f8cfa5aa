package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrToolUnavailable marks a failure to start an external executable.
var ErrToolUnavailable = errors.New("external tool unavailable")

type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Runner executes external tools. Exit codes are reported, not interpreted.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (*ProcessResult, error)
}

type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (*ProcessResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children that inherit the pipes must not hold Wait open past a kill
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	result := &ProcessResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		// killed or never started because of the deadline, not a tool verdict
		return result, fmt.Errorf("%s: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return nil, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, name, err)
}
