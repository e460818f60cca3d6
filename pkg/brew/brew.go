// Package brew wraps the Homebrew CLI operations phpswitch depends on.
//
// Every operation shells out through an execx.Runner with its own deadline:
// queries stay snappy (seconds), mutating operations get room to work
// (minutes for installs). The exact command lines are part of the contract
// with Homebrew and are kept in one place here.
package brew

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/execx"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// Per-operation deadlines. Queries must not hang an interactive command;
// installs legitimately take minutes on a cold bottle cache.
const (
	queryTimeout     = 10 * time.Second
	searchTimeout    = 30 * time.Second
	linkTimeout      = 30 * time.Second
	installTimeout   = 10 * time.Minute
	uninstallTimeout = 2 * time.Minute
)

// searchPattern matches the php runtime formula family, excluding tools
// like php-cs-fixer and phpunit.
const searchPattern = `/^php(@[0-9.]+)?$/`

// Installed describes one installed PHP runtime.
type Installed struct {
	Version phpver.Version
	Prefix  string // opt prefix (stable across patch upgrades)
	Linked  bool   // whether this runtime is the brew-linked one
}

// BinDir returns the directory holding the runtime's php binary.
func (i Installed) BinDir() string {
	return filepath.Join(i.Prefix, "bin")
}

// SbinDir returns the directory holding the runtime's php-fpm binary.
func (i Installed) SbinDir() string {
	return filepath.Join(i.Prefix, "sbin")
}

// Brew is the Homebrew client. It is safe for concurrent use.
type Brew struct {
	run execx.Runner
	log *log.Logger

	mu     sync.Mutex
	prefix string // memoized `brew --prefix`
}

// New creates a Homebrew client on top of the given runner.
func New(runner execx.Runner, logger *log.Logger) *Brew {
	if logger == nil {
		logger = log.Default()
	}
	return &Brew{run: runner, log: logger}
}

// Prefix returns the Homebrew installation prefix (e.g. /opt/homebrew).
// The answer is memoized for the lifetime of the client.
func (b *Brew) Prefix(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.prefix != "" {
		return b.prefix, nil
	}

	res, err := b.run.Run(ctx, queryTimeout, "brew", "--prefix")
	if err != nil {
		return "", brewUnavailable(err)
	}
	if res.TimedOut {
		return "", errors.New(errors.ErrCodeRegistryTimeout, "brew --prefix timed out after %s", queryTimeout)
	}
	if !res.Success() {
		return "", queryFailed("brew --prefix", res)
	}

	b.prefix = strings.TrimSpace(res.Stdout)
	return b.prefix, nil
}

// OptDir returns the stable opt prefix for a formula
// (e.g. /opt/homebrew/opt/php@8.1).
func (b *Brew) OptDir(ctx context.Context, formula string) (string, error) {
	prefix, err := b.Prefix(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(prefix, "opt", formula), nil
}

// ListInstalled returns the installed PHP runtimes, oldest version first.
// Formulas outside the php family are ignored.
func (b *Brew) ListInstalled(ctx context.Context) ([]Installed, error) {
	res, err := b.run.Run(ctx, queryTimeout, "brew", "list", "--formula", "--versions")
	if err != nil {
		return nil, brewUnavailable(err)
	}
	if res.TimedOut {
		return nil, errors.New(errors.ErrCodeRegistryTimeout, "brew list timed out after %s", queryTimeout)
	}
	if !res.Success() {
		return nil, queryFailed("brew list", res)
	}

	linked, _, err := b.LinkedFormula(ctx)
	if err != nil {
		return nil, err
	}

	var out []Installed
	for _, line := range res.Lines() {
		name, _, _ := strings.Cut(line, " ")
		v, ok := phpver.FromFormula(name)
		if !ok {
			continue
		}
		prefix, err := b.OptDir(ctx, v.Formula)
		if err != nil {
			return nil, err
		}
		out = append(out, Installed{
			Version: v,
			Prefix:  prefix,
			Linked:  v == linked,
		})
	}

	slices.SortFunc(out, func(a, b Installed) int {
		return phpver.Compare(a.Version, b.Version)
	})
	return out, nil
}

// LinkedFormula resolves which PHP runtime Homebrew currently links into
// its bin directory. It inspects the php symlink under the brew prefix,
// which is the link metadata `brew link` maintains. A missing or foreign
// symlink reports ok=false without an error.
func (b *Brew) LinkedFormula(ctx context.Context) (phpver.Version, bool, error) {
	prefix, err := b.Prefix(ctx)
	if err != nil {
		return phpver.Unknown, false, err
	}

	linkPath := filepath.Join(prefix, "bin", "php")
	target, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		if !os.IsNotExist(err) {
			b.log.Debugf("resolve %s: %v", linkPath, err)
		}
		return phpver.Unknown, false, nil
	}

	// Linked binaries live under <prefix>/Cellar/<formula>/<version>/bin.
	parts := strings.Split(filepath.ToSlash(target), "/")
	for i, part := range parts {
		if part == "Cellar" && i+1 < len(parts) {
			if v, ok := phpver.FromFormula(parts[i+1]); ok {
				return v, true, nil
			}
			return phpver.Unknown, false, nil
		}
	}
	return phpver.Unknown, false, nil
}

// Search queries Homebrew for all known php runtime formulas. This hits
// the network and the formula index, so it carries the longest query
// deadline; callers are expected to cache the answer.
func (b *Brew) Search(ctx context.Context) ([]phpver.Version, error) {
	res, err := b.run.Run(ctx, searchTimeout, "brew", "search", "--formula", searchPattern)
	if err != nil {
		return nil, brewUnavailable(err)
	}
	if res.TimedOut {
		return nil, errors.New(errors.ErrCodeRegistryTimeout, "brew search timed out after %s", searchTimeout).
			WithSuggestion("check your network connection, or retry with the cached listing")
	}
	if !res.Success() {
		return nil, queryFailed("brew search", res)
	}

	var out []phpver.Version
	for _, line := range res.Lines() {
		// brew prints section headers like "==> Formulae".
		if strings.HasPrefix(line, "==>") {
			continue
		}
		if v, ok := phpver.FromFormula(line); ok {
			out = append(out, v)
		}
	}

	phpver.Sort(out)
	return out, nil
}

// Link makes v the linked runtime. --overwrite and --force are required
// for versioned (keg-only) formulas.
func (b *Brew) Link(ctx context.Context, v phpver.Version) error {
	res, err := b.run.Run(ctx, linkTimeout, "brew", "link", "--overwrite", "--force", v.Formula)
	if err != nil {
		return brewUnavailable(err)
	}
	if res.TimedOut {
		return errors.New(errors.ErrCodeLinkFailed, "brew link %s timed out after %s", v.Formula, linkTimeout)
	}
	if !res.Success() {
		return errors.New(errors.ErrCodeLinkFailed, "brew link %s failed: %s", v.Formula, stderrSummary(res)).
			WithSuggestion("run `brew link --overwrite --force %s` to see the full output", v.Formula)
	}
	return nil
}

// Unlink removes v from the linked bin directory. Callers treat failures
// as non-fatal: an unlinked or missing formula leaves nothing to undo.
func (b *Brew) Unlink(ctx context.Context, v phpver.Version) error {
	res, err := b.run.Run(ctx, linkTimeout, "brew", "unlink", v.Formula)
	if err != nil {
		return brewUnavailable(err)
	}
	if res.TimedOut {
		return errors.New(errors.ErrCodeLinkFailed, "brew unlink %s timed out after %s", v.Formula, linkTimeout)
	}
	if !res.Success() {
		return errors.New(errors.ErrCodeLinkFailed, "brew unlink %s failed: %s", v.Formula, stderrSummary(res))
	}
	return nil
}

// Install installs the formula for v.
func (b *Brew) Install(ctx context.Context, v phpver.Version) error {
	res, err := b.run.Run(ctx, installTimeout, "brew", "install", v.Formula)
	if err != nil {
		return brewUnavailable(err)
	}
	if res.TimedOut {
		return errors.New(errors.ErrCodeInstallFailed, "brew install %s timed out after %s", v.Formula, installTimeout)
	}
	if !res.Success() {
		return errors.New(errors.ErrCodeInstallFailed, "brew install %s failed: %s", v.Formula, stderrSummary(res)).
			WithSuggestion("run `brew install %s` to see the full output", v.Formula)
	}
	return nil
}

// Uninstall removes the formula for v.
func (b *Brew) Uninstall(ctx context.Context, v phpver.Version) error {
	res, err := b.run.Run(ctx, uninstallTimeout, "brew", "uninstall", v.Formula)
	if err != nil {
		return brewUnavailable(err)
	}
	if res.TimedOut {
		return errors.New(errors.ErrCodeUninstallFailed, "brew uninstall %s timed out after %s", v.Formula, uninstallTimeout)
	}
	if !res.Success() {
		return errors.New(errors.ErrCodeUninstallFailed, "brew uninstall %s failed: %s", v.Formula, stderrSummary(res))
	}
	return nil
}

// brewUnavailable classifies a command that never ran, most commonly
// because Homebrew is not installed.
func brewUnavailable(cause error) *errors.Error {
	return errors.Wrap(errors.ErrCodeRegistryUnavailable, cause, "cannot run brew").
		WithSuggestion("install Homebrew from https://brew.sh and make sure `brew` is on your PATH")
}

func queryFailed(what string, res execx.Result) *errors.Error {
	return errors.New(errors.ErrCodeRegistryUnavailable, "%s failed: %s", what, stderrSummary(res)).
		WithSuggestion("run `brew doctor` to check your Homebrew installation")
}

// stderrSummary extracts the first meaningful stderr line for error
// messages, falling back to the exit code.
func stderrSummary(res execx.Result) string {
	for _, line := range strings.Split(res.Stderr, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s
		}
	}
	return "exit status " + strconv.Itoa(res.ExitCode)
}
