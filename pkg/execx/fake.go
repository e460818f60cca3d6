package execx

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FakeRunner is a scripted Runner for tests. Outcomes are keyed by the full
// command line ("brew link --overwrite --force php@8.2"); lookup falls back
// to the longest registered prefix so tests can stub whole command families
// ("brew services") in one line.
type FakeRunner struct {
	mu       sync.Mutex
	outcomes map[string]fakeOutcome

	// Calls records every executed command line in order.
	Calls []string

	// Default is returned when no stub matches. DefaultErr, when set,
	// takes precedence.
	Default    Result
	DefaultErr error
}

type fakeOutcome struct {
	res Result
	err error
	fn  func() (Result, error)
}

// NewFakeRunner creates an empty FakeRunner whose default outcome is a
// successful command with no output.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{outcomes: make(map[string]fakeOutcome)}
}

// Stub registers the outcome for a command line or command-line prefix.
func (f *FakeRunner) Stub(command string, res Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[command] = fakeOutcome{res: res, err: err}
}

// StubStdout registers a successful outcome whose stdout is the given text.
func (f *FakeRunner) StubStdout(command, stdout string) {
	f.Stub(command, Result{Stdout: stdout}, nil)
}

// StubFailure registers a non-zero exit with the given stderr text.
func (f *FakeRunner) StubFailure(command, stderr string) {
	f.Stub(command, Result{ExitCode: 1, Stderr: stderr}, nil)
}

// StubTimeout registers an outcome that reports a hit deadline.
func (f *FakeRunner) StubTimeout(command string) {
	f.Stub(command, Result{ExitCode: -1, TimedOut: true}, nil)
}

// StubFunc registers a dynamic outcome, evaluated on every matching call.
// Useful when a stubbed command has side effects the test must mimic, such
// as `brew link` moving a symlink.
func (f *FakeRunner) StubFunc(command string, fn func() (Result, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[command] = fakeOutcome{fn: fn}
}

// Run implements Runner.
func (f *FakeRunner) Run(_ context.Context, _ time.Duration, name string, args ...string) (Result, error) {
	line := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.Calls = append(f.Calls, line)

	o, found := f.outcomes[line]
	if !found {
		bestLen := -1
		for prefix, candidate := range f.outcomes {
			if strings.HasPrefix(line, prefix) && len(prefix) > bestLen {
				bestLen = len(prefix)
				o = candidate
				found = true
			}
		}
	}
	f.mu.Unlock()

	if !found {
		return f.Default, f.DefaultErr
	}
	if o.fn != nil {
		return o.fn()
	}
	return o.res, o.err
}

// Called reports whether any recorded command line starts with prefix.
func (f *FakeRunner) Called(prefix string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// CallCount returns how many recorded command lines start with prefix.
func (f *FakeRunner) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}
