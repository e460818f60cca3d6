// Package switcher orchestrates a PHP version switch end to end.
//
// A switch walks a fixed pipeline: validate the target, install it if asked
// to, relink Homebrew, rewrite the shell startup file, reconcile php-fpm
// services, and verify what a new shell will actually run.
//
// Failure semantics differ by stage. Validation, installation, and linking
// failures are terminal: nothing was changed yet (the Homebrew link call is
// atomic), so the pipeline stops. Once the link has moved, the remaining
// stages always run; their problems are recorded on the report as errors or
// warnings so the user sees exactly which parts of the machine still need
// attention. There is no rollback, matching what a by-hand `brew link`
// workflow would leave behind.
package switcher

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/config"
	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
	"github.com/phpswitch/phpswitch/pkg/registry"
	"github.com/phpswitch/phpswitch/pkg/resolver"
	"github.com/phpswitch/phpswitch/pkg/services"
	"github.com/phpswitch/phpswitch/pkg/shellsync"
)

// Stage names a pipeline phase.
type Stage string

const (
	StageValidating         Stage = "validating"
	StageInstalling         Stage = "installing"
	StageLinking            Stage = "linking"
	StageSyncingShell       Stage = "syncing-shell"
	StageReconcilingService Stage = "reconciling-service"
	StageVerifying          Stage = "verifying"
)

// StageResult records one executed stage. Stages that never ran (because
// an earlier stage failed terminally) do not appear on the report.
type StageResult struct {
	Stage    Stage
	Duration time.Duration
	Err      error
}

// Warning is a non-fatal problem the user should know about.
type Warning struct {
	Code       errors.Code
	Message    string
	Suggestion string
}

// Request describes the switch to perform.
type Request struct {
	Version phpver.Version

	// InstallIfMissing installs the target instead of failing validation
	// when it is not present.
	InstallIfMissing bool

	// NoRestart skips the php-fpm restart for this switch even when the
	// config enables it. Stopping competing services still happens.
	NoRestart bool
}

// Report is the full outcome of a switch.
type Report struct {
	Requested phpver.Version
	Succeeded bool

	Stages   []StageResult
	Warnings []Warning
	Errs     []error

	// Shell synchronization outcome.
	ShellFile    string
	ShellChanged bool
	Backup       string

	// Services stopped during reconciliation.
	StoppedServices []string

	// Active is the verified end state.
	Active resolver.Active
}

// Err returns the first terminal error, or nil for a successful switch.
func (r *Report) Err() error {
	if len(r.Errs) == 0 {
		return nil
	}
	return r.Errs[0]
}

// Deps wires a Switcher. Dialect may be nil, in which case the login shell
// is detected from the environment.
type Deps struct {
	Registry *registry.Client
	Brew     *brew.Brew
	Shell    *shellsync.Synchronizer
	Services *services.Manager
	Resolver *resolver.Resolver
	Dialect  shellsync.Dialect
	Config   config.Config
	Logger   *log.Logger
}

// Switcher runs switch pipelines. It is stateless; one Switcher can serve
// any number of Switch calls.
type Switcher struct {
	deps Deps
	log  *log.Logger
}

// New creates a Switcher.
func New(deps Deps) *Switcher {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Dialect == nil {
		deps.Dialect = shellsync.DialectFor(shellsync.Detect())
	}
	return &Switcher{deps: deps, log: deps.Logger}
}

// Switch runs the pipeline for req and always returns a report, even when
// the switch fails on the first stage.
func (s *Switcher) Switch(ctx context.Context, req Request) *Report {
	rep := &Report{Requested: req.Version}

	run := func(stage Stage, fn func() error) bool {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		rep.Stages = append(rep.Stages, StageResult{Stage: stage, Duration: elapsed, Err: err})
		if err != nil {
			s.log.Error("stage failed", "stage", stage, "duration", elapsed, "err", err)
			rep.Errs = append(rep.Errs, err)
			return false
		}
		s.log.Debug("stage done", "stage", stage, "duration", elapsed)
		return true
	}

	var target brew.Installed
	needInstall := false

	ok := run(StageValidating, func() error {
		if req.Version.IsUnknown() {
			return errors.New(errors.ErrCodeInvalidVersion, "no target version given")
		}
		installed, err := s.deps.Registry.Installed(ctx)
		if err != nil {
			return err
		}
		found, present := findInstalled(installed, req.Version)
		if !present {
			if !req.InstallIfMissing {
				return errors.New(errors.ErrCodeVersionNotInstalled, "PHP %s is not installed", req.Version).
					WithSuggestion("run `phpswitch install %s`, or retry with --install", req.Version)
			}
			needInstall = true
			return nil
		}
		target = found
		return nil
	})
	if !ok {
		return s.finish(rep)
	}

	if needInstall {
		if ok := run(StageInstalling, func() error {
			if err := s.deps.Brew.Install(ctx, req.Version); err != nil {
				return err
			}
			// Re-query so the target carries its real opt prefix.
			installed, err := s.deps.Registry.Installed(ctx)
			if err != nil {
				return err
			}
			found, present := findInstalled(installed, req.Version)
			if !present {
				return errors.New(errors.ErrCodeInstallFailed, "PHP %s is still missing after install", req.Version)
			}
			target = found
			return nil
		}); !ok {
			return s.finish(rep)
		}
	}

	ok = run(StageLinking, func() error {
		linked, haveLink, err := s.deps.Brew.LinkedFormula(ctx)
		if err != nil {
			return err
		}
		if haveLink && linked == target.Version {
			s.log.Debug("already linked", "version", linked)
			return nil
		}
		if haveLink {
			// A failed unlink is survivable; link --overwrite below
			// replaces the files either way.
			if err := s.deps.Brew.Unlink(ctx, linked); err != nil {
				s.warn(rep, err)
			}
		}
		return s.deps.Brew.Link(ctx, target.Version)
	})
	if !ok {
		return s.finish(rep)
	}

	// The link has moved; from here on every stage runs so the report
	// shows the whole machine state, not just the first problem.
	run(StageSyncingShell, func() error {
		res, err := s.deps.Shell.Sync(s.deps.Dialect, target.Version, target.BinDir(), target.SbinDir())
		rep.ShellFile = res.File
		rep.ShellChanged = res.Changed
		rep.Backup = res.Backup
		return err
	})

	run(StageReconcilingService, func() error {
		stopped, warnings := s.deps.Services.StopOthers(ctx, target.Version)
		rep.StoppedServices = stopped
		for _, w := range warnings {
			s.warn(rep, w)
		}
		restart := s.deps.Config.AutoRestartService && !req.NoRestart
		if err := s.deps.Services.Restart(ctx, target.Version, restart); err != nil {
			s.warn(rep, err)
		}
		return nil
	})

	run(StageVerifying, func() error {
		active := s.deps.Resolver.Active(ctx)
		rep.Active = active

		if active.Linked != target.Version {
			s.warn(rep, errors.New(errors.ErrCodePathInconsistency,
				"expected %s to be linked after the switch, found %s", target.Version, active.Linked))
		}
		if active.PathMismatch {
			w := errors.New(errors.ErrCodePathInconsistency,
				"your shell still resolves php to %s", active.BinaryPath).
				WithSuggestion("open a new shell, or run `source %s`", rep.ShellFile)
			if active.BinaryPath == "" {
				w = errors.New(errors.ErrCodePathInconsistency, "no php binary is visible on PATH").
					WithSuggestion("open a new shell so %s takes effect", rep.ShellFile)
			}
			s.warn(rep, w)
		}
		return nil
	})

	return s.finish(rep)
}

func (s *Switcher) warn(rep *Report, err error) {
	w := Warning{
		Code:       errors.GetCode(err),
		Message:    errors.UserMessage(err),
		Suggestion: errors.GetSuggestion(err),
	}
	rep.Warnings = append(rep.Warnings, w)
	s.log.Warn("switch warning", "code", w.Code, "msg", w.Message)
}

func (s *Switcher) finish(rep *Report) *Report {
	rep.Succeeded = len(rep.Errs) == 0
	s.log.Info("switch finished",
		"version", rep.Requested,
		"succeeded", rep.Succeeded,
		"stages", len(rep.Stages),
		"warnings", len(rep.Warnings))
	return rep
}

func findInstalled(list []brew.Installed, v phpver.Version) (brew.Installed, bool) {
	for _, i := range list {
		if i.Version.ID == v.ID {
			return i, true
		}
	}
	return brew.Installed{}, false
}
