package execx

import (
	"context"
	"testing"
	"time"
)

func TestSystemRunCapturesOutput(t *testing.T) {
	r := NewSystem(nil)

	res, err := r.Run(context.Background(), 0, "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Stdout != "out\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "out\n")
	}
	if res.Stderr != "err\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "err\n")
	}
	if !res.Success() {
		t.Errorf("Success() = false for exit 0 (res=%+v)", res)
	}
}

func TestSystemRunExitCode(t *testing.T) {
	r := NewSystem(nil)

	res, err := r.Run(context.Background(), 0, "sh", "-c", "exit 3")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Success() {
		t.Error("Success() = true for exit 3")
	}
}

func TestSystemRunTimeout(t *testing.T) {
	r := NewSystem(nil)

	start := time.Now()
	res, err := r.Run(context.Background(), 50*time.Millisecond, "sh", "-c", "sleep 5")
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if res.Success() {
		t.Error("Success() = true for timed out command")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout did not kill command promptly (took %s)", elapsed)
	}
}

func TestSystemRunMissingBinary(t *testing.T) {
	r := NewSystem(nil)

	if _, err := r.Run(context.Background(), 0, "phpswitch-no-such-binary"); err == nil {
		t.Fatal("Run() error = nil for missing binary")
	}
}

func TestSystemRunParentCancellation(t *testing.T) {
	r := NewSystem(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Run(ctx, time.Second, "sh", "-c", "sleep 5")
	if err == nil {
		t.Fatalf("Run() = %+v, want context error", res)
	}
	if res.TimedOut {
		t.Error("parent cancellation must not be reported as a timeout")
	}
}

func TestResultLines(t *testing.T) {
	res := Result{Stdout: "  php@8.1  \n\nphp@8.2\n   \n"}

	lines := res.Lines()
	want := []string{"php@8.1", "php@8.2"}
	if len(lines) != len(want) {
		t.Fatalf("Lines() = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Lines()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestFakeRunnerMatching(t *testing.T) {
	f := NewFakeRunner()
	f.StubStdout("brew --prefix", "/opt/homebrew\n")
	f.Stub("brew services", Result{Stdout: "php started"}, nil)
	f.StubFailure("brew link --overwrite --force php@9.9", "no formula")

	res, err := f.Run(context.Background(), 0, "brew", "--prefix")
	if err != nil || res.Stdout != "/opt/homebrew\n" {
		t.Errorf("exact match = (%+v, %v)", res, err)
	}

	// Prefix fallback
	res, _ = f.Run(context.Background(), 0, "brew", "services", "list")
	if res.Stdout != "php started" {
		t.Errorf("prefix match Stdout = %q", res.Stdout)
	}

	res, _ = f.Run(context.Background(), 0, "brew", "link", "--overwrite", "--force", "php@9.9")
	if res.ExitCode != 1 || res.Stderr != "no formula" {
		t.Errorf("failure stub = %+v", res)
	}

	// Unstubbed commands hit the default outcome.
	res, err = f.Run(context.Background(), 0, "brew", "update")
	if err != nil || !res.Success() {
		t.Errorf("default outcome = (%+v, %v)", res, err)
	}

	if got := f.CallCount("brew"); got != 4 {
		t.Errorf("CallCount(brew) = %d, want 4", got)
	}
	if !f.Called("brew services list") {
		t.Error("Called(brew services list) = false")
	}
}
