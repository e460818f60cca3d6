package shellsync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/phpswitch/phpswitch/pkg/errors"
)

// Shell identifies the user's login shell family.
type Shell int

const (
	// Unknown covers unset or unrecognized $SHELL values. It maps to the
	// POSIX ~/.profile dialect.
	Unknown Shell = iota
	Bash
	Zsh
	Fish
)

// String returns the lowercase shell name.
func (s Shell) String() string {
	switch s {
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	case Fish:
		return "fish"
	default:
		return "unknown"
	}
}

// Detect classifies the current login shell from $SHELL.
func Detect() Shell {
	return detectFrom(os.Getenv("SHELL"))
}

func detectFrom(shellEnv string) Shell {
	switch filepath.Base(shellEnv) {
	case "bash":
		return Bash
	case "zsh":
		return Zsh
	case "fish":
		return Fish
	default:
		return Unknown
	}
}

// Dialect describes how one shell family persists a PATH prepend.
type Dialect interface {
	// Name is the dialect's display name ("bash", "fish", "profile").
	Name() string

	// StartupFile returns the startup file the dialect manages,
	// resolved against the given home directory.
	StartupFile(home string) string

	// RenderBlock produces the managed directive lines (markers
	// excluded) that put binDir and sbinDir at the front of PATH.
	RenderBlock(binDir, sbinDir string) []string
}

// validator is implemented by dialects whose rendered block can be
// syntax-checked before it is written anywhere near a startup file.
type validator interface {
	Validate(lines []string) error
}

// DialectFor maps a detected shell to its dialect. Unknown shells get the
// portable ~/.profile treatment.
func DialectFor(shell Shell) Dialect {
	switch shell {
	case Bash:
		return posixDialect{name: "bash", file: ".bashrc", lang: syntax.LangBash}
	case Zsh:
		// TODO: honor ZDOTDIR when resolving the zsh startup file.
		return posixDialect{name: "zsh", file: ".zshrc", lang: syntax.LangBash}
	case Fish:
		return fishDialect{}
	default:
		return posixDialect{name: "profile", file: ".profile", lang: syntax.LangPOSIX}
	}
}

// posixDialect covers bash, zsh, and plain POSIX profiles; they share the
// export syntax and differ only in file name and parser strictness.
type posixDialect struct {
	name string
	file string
	lang syntax.LangVariant
}

func (d posixDialect) Name() string { return d.name }

func (d posixDialect) StartupFile(home string) string {
	return filepath.Join(home, d.file)
}

func (d posixDialect) RenderBlock(binDir, sbinDir string) []string {
	return []string{fmt.Sprintf(`export PATH="%s:%s:$PATH"`, binDir, sbinDir)}
}

// Validate parses the rendered block with the dialect's shell grammar.
// A failure means phpswitch would have written a broken startup file; the
// write is aborted instead.
func (d posixDialect) Validate(lines []string) error {
	parser := syntax.NewParser(syntax.Variant(d.lang))
	src := strings.Join(lines, "\n") + "\n"
	if _, err := parser.Parse(strings.NewReader(src), d.file); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "managed block failed %s syntax check", d.name)
	}
	return nil
}

// fishDialect writes to fish's config.fish. fish has no export keyword;
// the block sets PATH globally for the session.
type fishDialect struct{}

func (fishDialect) Name() string { return "fish" }

func (fishDialect) StartupFile(home string) string {
	return filepath.Join(home, ".config", "fish", "config.fish")
}

func (fishDialect) RenderBlock(binDir, sbinDir string) []string {
	return []string{fmt.Sprintf("set -gx PATH %s %s $PATH", binDir, sbinDir)}
}
