// Package resolver determines which PHP runtime is linked and which one a
// shell actually executes.
//
// The two can disagree: Homebrew links <prefix>/bin/php, but PATH may find
// a system PHP (/usr/bin/php) or a manually installed binary first. The
// resolver detects that shadowing by comparing the real paths of the PATH
// binary and the brew link, not by comparing version numbers, so the
// unversioned "php" formula never trips a false positive.
package resolver

import (
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/execx"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// bannerTimeout bounds the `php -v` banner probe.
const bannerTimeout = 5 * time.Second

// Active describes the runtime a new shell would execute right now.
type Active struct {
	// Version is parsed from the banner of the PATH php binary.
	// Unknown when no binary runs or the banner is unreadable.
	Version phpver.Version

	// BinaryPath is the php binary PATH resolves to. Empty when PATH has
	// no php at all.
	BinaryPath string

	// Linked is the brew-linked runtime. Unknown when nothing is linked.
	Linked phpver.Version

	// PathMismatch reports that the linked runtime is not what PATH
	// executes: either PATH has no php, or it resolves to a different
	// binary than the brew link.
	PathMismatch bool
}

// Resolver inspects the local runtime state. Its queries never fail: on
// any problem the affected field degrades to its unknown value, because
// "what is active" must be answerable on arbitrarily broken machines.
type Resolver struct {
	brew *brew.Brew
	run  execx.Runner
	log  *log.Logger

	// lookPath is swappable in tests.
	lookPath func(file string) (string, error)
}

// New creates a Resolver.
func New(b *brew.Brew, runner execx.Runner, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{brew: b, run: runner, log: logger, lookPath: exec.LookPath}
}

// Linked returns the brew-linked runtime, if any.
func (r *Resolver) Linked(ctx context.Context) (phpver.Version, bool, error) {
	return r.brew.LinkedFormula(ctx)
}

// Active resolves the runtime state visible to a new shell.
func (r *Resolver) Active(ctx context.Context) Active {
	a := Active{Version: phpver.Unknown, Linked: phpver.Unknown}

	linked, haveLink, err := r.brew.LinkedFormula(ctx)
	if err != nil {
		r.log.Debugf("linked version unavailable: %v", err)
		haveLink = false
	}
	if haveLink {
		a.Linked = linked
	}

	binPath, err := r.lookPath("php")
	if err != nil {
		// No php anywhere on PATH. If something is linked, the user's
		// PATH is missing the brew bin dir.
		a.PathMismatch = haveLink
		return a
	}
	a.BinaryPath = binPath

	if haveLink {
		a.PathMismatch = !r.sameBinary(ctx, binPath)
	}

	res, err := r.run.Run(ctx, bannerTimeout, binPath, "-v")
	if err != nil || !res.Success() {
		r.log.Debugf("php -v probe failed: err=%v exit=%d", err, res.ExitCode)
		return a
	}
	if v, ok := phpver.ParseBanner(res.Stdout); ok {
		a.Version = v
	}
	return a
}

// sameBinary reports whether binPath and the brew php link resolve to the
// same file.
func (r *Resolver) sameBinary(ctx context.Context, binPath string) bool {
	prefix, err := r.brew.Prefix(ctx)
	if err != nil {
		return false
	}
	linkReal, err := filepath.EvalSymlinks(filepath.Join(prefix, "bin", "php"))
	if err != nil {
		return false
	}
	pathReal, err := filepath.EvalSymlinks(binPath)
	if err != nil {
		return false
	}
	return linkReal == pathReal
}
