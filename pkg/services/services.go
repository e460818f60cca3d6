// Package services manages the php-fpm background services Homebrew runs
// for each PHP runtime.
//
// Switching runtimes must leave at most one php-fpm running: the one for
// the selected version. Service operations are deliberately forgiving;
// a daemon that refuses to stop produces a warning on the switch report,
// not a failed switch, because the runtime itself already changed.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/execx"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// opTimeout bounds every `brew services` invocation. launchd/systemd
// round-trips can hang when a unit is wedged; phpswitch reports and moves
// on instead of blocking the switch.
const opTimeout = 30 * time.Second

// Service is one php runtime's background service.
type Service struct {
	Version phpver.Version
	Name    string // brew service name, same as the formula
	Running bool
}

// Name returns the brew service name for a runtime.
func Name(v phpver.Version) string {
	return v.Formula
}

// Manager drives `brew services`.
type Manager struct {
	run execx.Runner
	log *log.Logger
}

// NewManager creates a service manager.
func NewManager(runner execx.Runner, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{run: runner, log: logger}
}

// List returns the php runtime services brew knows about. Non-php services
// are ignored.
func (m *Manager) List(ctx context.Context) ([]Service, error) {
	res, err := m.run.Run(ctx, opTimeout, "brew", "services", "list")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeServiceFailed, err, "cannot run brew services")
	}
	if res.TimedOut {
		return nil, timeoutErr("brew services list")
	}
	if !res.Success() {
		return nil, errors.New(errors.ErrCodeServiceFailed, "brew services list failed: %s", firstLine(res.Stderr))
	}

	var out []Service
	for _, line := range res.Lines() {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] == "Name" {
			continue
		}
		v, ok := phpver.FromFormula(fields[0])
		if !ok {
			continue
		}
		out = append(out, Service{
			Version: v,
			Name:    fields[0],
			Running: fields[1] == "started",
		})
	}
	return out, nil
}

// StopOthers stops every running php service except the one for keep.
// Failures are collected as warnings and never abort the sweep; each
// service gets its own chance to stop.
func (m *Manager) StopOthers(ctx context.Context, keep phpver.Version) (stopped []string, warnings []error) {
	list, err := m.List(ctx)
	if err != nil {
		return nil, []error{err}
	}

	for _, svc := range list {
		if !svc.Running || svc.Version == keep {
			continue
		}
		if err := m.stop(ctx, svc.Name); err != nil {
			warnings = append(warnings, err)
			continue
		}
		m.log.Debugf("stopped service %s", svc.Name)
		stopped = append(stopped, svc.Name)
	}
	return stopped, warnings
}

// Restart restarts the service for v. With autoRestart disabled it is a
// no-op success; the user manages php-fpm manually.
func (m *Manager) Restart(ctx context.Context, v phpver.Version, autoRestart bool) error {
	if !autoRestart {
		m.log.Debugf("auto-restart disabled, leaving %s alone", Name(v))
		return nil
	}

	name := Name(v)
	res, err := m.run.Run(ctx, opTimeout, "brew", "services", "restart", name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeServiceFailed, err, "cannot run brew services")
	}
	if res.TimedOut {
		return timeoutErr("brew services restart " + name)
	}
	if !res.Success() {
		return errors.New(errors.ErrCodeServiceFailed, "restart %s failed: %s", name, firstLine(res.Stderr)).
			WithSuggestion("run `brew services restart %s` to see the full output", name)
	}
	return nil
}

// stop stops one service. A service that is already stopped counts as
// success; brew's wording for that case has changed between releases, so
// both the warning text and the exit code are accepted.
func (m *Manager) stop(ctx context.Context, name string) error {
	res, err := m.run.Run(ctx, opTimeout, "brew", "services", "stop", name)
	if err != nil {
		return errors.Wrap(errors.ErrCodeServiceFailed, err, "cannot run brew services")
	}
	if res.TimedOut {
		return timeoutErr("brew services stop " + name)
	}
	if res.Success() || strings.Contains(res.Stderr, "is not started") {
		return nil
	}
	return errors.New(errors.ErrCodeServiceFailed, "stop %s failed: %s", name, firstLine(res.Stderr))
}

func timeoutErr(what string) *errors.Error {
	return errors.New(errors.ErrCodeServiceTimeout, "%s timed out after %s", what, opTimeout).
		WithSuggestion("check `brew services list` for a wedged service")
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return "no output"
}
