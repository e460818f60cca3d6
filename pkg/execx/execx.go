// Package execx runs external commands with per-invocation timeouts and
// captured output.
//
// All phpswitch interaction with Homebrew and the PHP binary goes through
// the Runner interface, so the engine packages stay testable without a
// package manager on the machine.
package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Result captures the outcome of a finished command.
//
// A command that started but exited non-zero, or was killed by its timeout,
// still yields a Result (with ExitCode or TimedOut set). Runner returns a
// non-nil error only when the command could not be run at all, for example
// when the binary is missing from PATH.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Success reports whether the command completed with exit status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Lines splits stdout into trimmed, non-empty lines.
func (r Result) Lines() []string {
	var out []string
	for _, line := range strings.Split(r.Stdout, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Runner executes a command and waits for it to finish. A timeout of zero
// means no deadline beyond the caller's context.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error)
}

// System is the Runner backed by os/exec.
type System struct {
	log *log.Logger
}

// NewSystem creates a system Runner. A nil logger disables command tracing.
func NewSystem(logger *log.Logger) *System {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &System{log: logger}
}

// Run executes name with args, capturing stdout and stderr separately.
//
// Timeout handling distinguishes two cancellation sources: the parent
// context (user interrupt) propagates as a hard error, while the
// per-invocation timeout is reported through Result.TimedOut so callers
// can degrade gracefully.
func (s *System) Run(ctx context.Context, timeout time.Duration, name string, args ...string) (Result, error) {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start).Round(time.Millisecond)

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	switch {
	case ctx.Err() != nil:
		return Result{}, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		res.TimedOut = true
		res.ExitCode = -1
	case err == nil:
		// exit 0
	default:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The command never started (e.g. binary not on PATH).
			return Result{}, err
		}
		res.ExitCode = exitErr.ExitCode()
	}

	s.log.Debugf("ran %s %s: exit=%d timedOut=%v (%s)", name, strings.Join(args, " "), res.ExitCode, res.TimedOut, elapsed)
	return res, nil
}
