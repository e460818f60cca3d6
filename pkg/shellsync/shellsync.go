// Package shellsync rewrites shell startup files so new shells put the
// selected PHP runtime first on PATH.
//
// All edits are confined to one managed block between marker comments:
//
//	# >>> phpswitch >>>
//	# Managed by phpswitch. Do not edit between these markers.
//	export PATH="/opt/homebrew/opt/php@8.2/bin:/opt/homebrew/opt/php@8.2/sbin:$PATH"
//	# <<< phpswitch <<<
//
// Everything outside the markers is preserved byte for byte. Writes are
// atomic (write-then-rename), preceded by a timestamped backup of the
// previous file, and re-running a sync that changes nothing leaves the
// file untouched.
package shellsync

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/renameio/v2"

	"github.com/phpswitch/phpswitch/pkg/config"
	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// Managed block markers. Changing these orphans blocks written by older
// releases, so they are frozen.
const (
	markerBegin = "# >>> phpswitch >>>"
	markerEnd   = "# <<< phpswitch <<<"
)

// backupInfix sits between the startup file name and the numeric
// timestamp: ".zshrc.phpswitch.bak.1724572800123456789".
const backupInfix = ".phpswitch.bak."

// defaultPerm is used when the startup file does not exist yet.
const defaultPerm os.FileMode = 0o644

// Result reports what a sync did.
type Result struct {
	File    string // startup file that was (or would have been) edited
	Changed bool   // false when the file already had the exact block
	Backup  string // backup file path, empty if no backup was taken
	Pruned  int    // old backups removed by retention
}

// Synchronizer applies managed-block edits to startup files.
type Synchronizer struct {
	home string
	cfg  config.Config
	log  *log.Logger
}

// Option adjusts a Synchronizer.
type Option func(*Synchronizer)

// WithHome overrides the home directory (tests).
func WithHome(dir string) Option {
	return func(s *Synchronizer) { s.home = dir }
}

// New creates a Synchronizer rooted at the user's home directory.
func New(cfg config.Config, logger *log.Logger, opts ...Option) (*Synchronizer, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Synchronizer{cfg: cfg, log: logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		s.home = home
	}
	return s, nil
}

// Sync makes the dialect's startup file select the runtime rooted at
// binDir/sbinDir. The version is only used for the block's log line.
//
// The sequence is: render, syntax-check, splice, and only if the result
// differs from the current contents, back up and atomically replace.
func (s *Synchronizer) Sync(d Dialect, v phpver.Version, binDir, sbinDir string) (Result, error) {
	path := d.StartupFile(s.home)
	res := Result{File: path}

	current, exists, perm, err := readStartupFile(path)
	if err != nil {
		return res, err
	}

	managed := renderManaged(d, binDir, sbinDir)
	if val, ok := d.(validator); ok {
		if err := val.Validate(managed); err != nil {
			return res, err
		}
	}

	next := splice(current, managed)
	if next == current {
		s.log.Debugf("%s already selects PHP %s", path, v)
		return res, nil
	}

	if exists && s.cfg.BackupEnabled {
		backup, err := writeBackup(path, current, perm)
		if err != nil {
			return res, err
		}
		res.Backup = backup
		res.Pruned = s.pruneBackups(path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, writeFailed(path, err)
	}
	if err := renameio.WriteFile(path, []byte(next), perm); err != nil {
		return res, writeFailed(path, err)
	}

	res.Changed = true
	s.log.Debugf("updated %s for PHP %s", path, v)
	return res, nil
}

// HasBlock reports whether the dialect's startup file already carries a
// managed block. Used by diagnostics.
func (s *Synchronizer) HasBlock(d Dialect) (bool, string, error) {
	path := d.StartupFile(s.home)
	content, _, _, err := readStartupFile(path)
	if err != nil {
		return false, path, err
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == markerBegin {
			return true, path, nil
		}
	}
	return false, path, nil
}

// Backups lists the retained backups for the dialect's startup file,
// newest first.
func (s *Synchronizer) Backups(d Dialect) []string {
	stamped := listBackups(d.StartupFile(s.home))
	out := make([]string, len(stamped))
	for i, b := range stamped {
		out[i] = b.path
	}
	return out
}

func readStartupFile(path string) (content string, exists bool, perm os.FileMode, err error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, defaultPerm, nil
	}
	if err != nil {
		return "", false, defaultPerm, errors.Wrap(errors.ErrCodeConfigWriteFailed, err, "read %s", path).
			WithSuggestion("check permissions on %s", path)
	}

	perm = defaultPerm
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	return string(data), true, perm, nil
}

func renderManaged(d Dialect, binDir, sbinDir string) []string {
	lines := []string{
		markerBegin,
		"# Managed by phpswitch. Do not edit between these markers.",
	}
	lines = append(lines, d.RenderBlock(binDir, sbinDir)...)
	return append(lines, markerEnd)
}

// splice replaces the managed block in content with the managed lines.
//
// The first begin marker anchors the block's position; any additional
// blocks are dropped, so files damaged by interrupted edits converge back
// to exactly one block. An unmatched begin marker swallows everything
// through end of file (the block had no terminator, so no user content
// can follow it); an unmatched end marker is ordinary user content. When
// no block exists the managed lines are appended, separated by a blank
// line. Output always ends with a newline.
func splice(content string, managed []string) string {
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}

	var out []string
	inBlock, inserted := false, false
	for _, line := range lines {
		switch strings.TrimSpace(line) {
		case markerBegin:
			if !inserted {
				out = append(out, managed...)
				inserted = true
			}
			inBlock = true
		case markerEnd:
			if !inBlock {
				out = append(out, line)
			}
			inBlock = false
		default:
			if !inBlock {
				out = append(out, line)
			}
		}
	}

	if !inserted {
		if len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, managed...)
	}
	return strings.Join(out, "\n") + "\n"
}

func writeBackup(path, content string, perm os.FileMode) (string, error) {
	backup := fmt.Sprintf("%s%s%d", path, backupInfix, time.Now().UnixNano())
	if err := os.WriteFile(backup, []byte(content), perm); err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigWriteFailed, err, "back up %s", path).
			WithSuggestion("check permissions on %s, or disable backups with backup_enabled=false", filepath.Dir(path))
	}
	return backup, nil
}

type stampedBackup struct {
	path  string
	stamp int64
}

// listBackups returns the startup file's backups, newest first. Files with
// a non-numeric suffix are not ours and are left alone.
func listBackups(path string) []stampedBackup {
	matches, err := filepath.Glob(path + backupInfix + "*")
	if err != nil {
		return nil
	}

	var out []stampedBackup
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, path+backupInfix)
		stamp, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, stampedBackup{path: m, stamp: stamp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].stamp > out[j].stamp })
	return out
}

// pruneBackups enforces the retention limit, including the backup just
// written. Prune failures are logged, never fatal: a leftover backup is
// better than a failed switch.
func (s *Synchronizer) pruneBackups(path string) int {
	if s.cfg.MaxBackups <= 0 {
		return 0
	}

	backups := listBackups(path)
	pruned := 0
	for _, b := range backups[min(len(backups), s.cfg.MaxBackups):] {
		if err := os.Remove(b.path); err != nil {
			s.log.Warnf("could not prune backup %s: %v", b.path, err)
			continue
		}
		pruned++
	}
	return pruned
}

func writeFailed(path string, cause error) *errors.Error {
	return errors.Wrap(errors.ErrCodeConfigWriteFailed, cause, "write %s", path).
		WithSuggestion("check permissions on %s", path)
}
