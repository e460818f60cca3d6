package services

import (
	"context"
	"testing"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/execx"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

const servicesTable = `Name      Status  User File
dnsmasq   started root /Library/LaunchDaemons/homebrew.mxcl.dnsmasq.plist
php@7.4   started dev  ~/Library/LaunchAgents/homebrew.mxcl.php@7.4.plist
php@8.1   started dev  ~/Library/LaunchAgents/homebrew.mxcl.php@8.1.plist
php@8.2   none
php       stopped
`

func mustVersion(t *testing.T, id string) phpver.Version {
	t.Helper()
	v, err := phpver.FromID(id)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestListFiltersToPHPFamily(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.StubStdout("brew services list", servicesTable)
	m := NewManager(fake, nil)

	got, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	want := []struct {
		id      string
		running bool
	}{
		{"7.4", true},
		{"8.1", true},
		{"8.2", false},
		{"default", false},
	}
	if len(got) != len(want) {
		t.Fatalf("List() = %+v, want %d php services", got, len(want))
	}
	for i, w := range want {
		if got[i].Version.ID != w.id || got[i].Running != w.running {
			t.Errorf("List()[%d] = %+v, want id=%s running=%v", i, got[i], w.id, w.running)
		}
	}
}

func TestListTimeout(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.StubTimeout("brew services list")
	m := NewManager(fake, nil)

	_, err := m.List(context.Background())
	if !errors.Is(err, errors.ErrCodeServiceTimeout) {
		t.Errorf("List() error = %v, want SERVICE_TIMEOUT", err)
	}
}

func TestStopOthers(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.StubStdout("brew services list", servicesTable)
	m := NewManager(fake, nil)

	stopped, warnings := m.StopOthers(context.Background(), mustVersion(t, "8.2"))

	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if len(stopped) != 2 || stopped[0] != "php@7.4" || stopped[1] != "php@8.1" {
		t.Errorf("stopped = %v, want [php@7.4 php@8.1]", stopped)
	}
	if fake.Called("brew services stop dnsmasq") {
		t.Error("non-php service was touched")
	}
	if fake.Called("brew services stop php@8.2") {
		t.Error("the kept version's service was stopped")
	}
}

func TestStopOthersCollectsWarningsAndContinues(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.StubStdout("brew services list", servicesTable)
	fake.StubFailure("brew services stop php@7.4", "Error: Failure while executing")
	m := NewManager(fake, nil)

	stopped, warnings := m.StopOthers(context.Background(), mustVersion(t, "8.2"))

	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", warnings)
	}
	if !errors.Is(warnings[0], errors.ErrCodeServiceFailed) {
		t.Errorf("warning code = %v, want SERVICE_FAILED", errors.GetCode(warnings[0]))
	}
	// The sweep must still reach php@8.1.
	if len(stopped) != 1 || stopped[0] != "php@8.1" {
		t.Errorf("stopped = %v, want [php@8.1]", stopped)
	}
}

func TestStopToleratesAlreadyStopped(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.StubStdout("brew services list", servicesTable)
	fake.Stub("brew services stop php@7.4",
		execx.Result{ExitCode: 1, Stderr: "Warning: Service php@7.4 is not started.\n"}, nil)
	m := NewManager(fake, nil)

	stopped, warnings := m.StopOthers(context.Background(), mustVersion(t, "8.2"))
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none for already-stopped service", warnings)
	}
	if len(stopped) != 2 {
		t.Errorf("stopped = %v, want both services counted", stopped)
	}
}

func TestStopOthersListFailure(t *testing.T) {
	fake := execx.NewFakeRunner()
	fake.StubFailure("brew services list", "Error: brew broke")
	m := NewManager(fake, nil)

	stopped, warnings := m.StopOthers(context.Background(), mustVersion(t, "8.2"))
	if len(stopped) != 0 || len(warnings) != 1 {
		t.Errorf("= (%v, %v), want no stops and one warning", stopped, warnings)
	}
}

func TestRestart(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		fake := execx.NewFakeRunner()
		m := NewManager(fake, nil)

		if err := m.Restart(context.Background(), mustVersion(t, "8.2"), false); err != nil {
			t.Fatalf("Restart() error: %v", err)
		}
		if len(fake.Calls) != 0 {
			t.Errorf("calls = %v, want none with auto-restart disabled", fake.Calls)
		}
	})

	t.Run("success", func(t *testing.T) {
		fake := execx.NewFakeRunner()
		m := NewManager(fake, nil)

		if err := m.Restart(context.Background(), mustVersion(t, "8.2"), true); err != nil {
			t.Fatalf("Restart() error: %v", err)
		}
		if !fake.Called("brew services restart php@8.2") {
			t.Errorf("calls = %v, want restart php@8.2", fake.Calls)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		fake := execx.NewFakeRunner()
		fake.StubTimeout("brew services restart php@8.2")
		m := NewManager(fake, nil)

		err := m.Restart(context.Background(), mustVersion(t, "8.2"), true)
		if !errors.Is(err, errors.ErrCodeServiceTimeout) {
			t.Errorf("Restart() error = %v, want SERVICE_TIMEOUT", err)
		}
	})

	t.Run("failure", func(t *testing.T) {
		fake := execx.NewFakeRunner()
		fake.StubFailure("brew services restart php@8.2", "Error: php-fpm crashed on boot")
		m := NewManager(fake, nil)

		err := m.Restart(context.Background(), mustVersion(t, "8.2"), true)
		if !errors.Is(err, errors.ErrCodeServiceFailed) {
			t.Errorf("Restart() error = %v, want SERVICE_FAILED", err)
		}
	})
}
