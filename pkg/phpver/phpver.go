// Package phpver defines the PHP version identity used across phpswitch.
//
// A version is identified by its MAJOR.MINOR pair (e.g. "8.1"). Patch-level
// detail is deliberately ignored: Homebrew ships one formula per minor line
// (php@8.1, php@8.2, ...) plus an unversioned "php" formula that tracks the
// latest stable release. The unversioned formula is modeled as the special
// identifier "default".
//
// The package converts between the three spellings the system encounters:
//
//   - user input:      "8.1", "php@8.1", "default", "php"
//   - formula names:   "php@8.1", "php"
//   - runtime banners: "PHP 8.1.27 (cli) (built: ...)"
package phpver

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/phpswitch/phpswitch/pkg/errors"
)

// DefaultID identifies the unversioned "php" formula, which Homebrew points
// at the latest stable release.
const DefaultID = "default"

// formulaPrefix is the Homebrew formula family phpswitch manages.
const formulaPrefix = "php"

var (
	idPattern     = regexp.MustCompile(`^\d+\.\d+$`)
	bannerPattern = regexp.MustCompile(`\bPHP (\d+\.\d+)`)
)

// Version is an immutable PHP version identity.
//
// The zero Version means "unknown": no runtime could be identified. Use
// IsUnknown to test for it.
type Version struct {
	ID      string // "8.1" or "default"
	Formula string // "php@8.1" or "php"
}

// Unknown is the sentinel for an unidentifiable runtime version.
var Unknown = Version{}

// Default returns the version identity of the unversioned "php" formula.
func Default() Version {
	return Version{ID: DefaultID, Formula: formulaPrefix}
}

// FromID parses user input into a Version. It accepts the canonical forms
// "8.1" and "default", plus the formula spellings "php@8.1" and "php" as a
// convenience, so pin files and command arguments can use either.
func FromID(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unknown, errors.New(errors.ErrCodeInvalidVersion, "version is empty")
	}

	if s == DefaultID || s == formulaPrefix {
		return Default(), nil
	}
	if rest, ok := strings.CutPrefix(s, formulaPrefix+"@"); ok {
		s = rest
	}

	if !idPattern.MatchString(s) {
		return Unknown, errors.New(errors.ErrCodeInvalidVersion, "not a PHP version: %q (want MAJOR.MINOR, e.g. 8.1, or %q)", raw, DefaultID)
	}
	return Version{ID: s, Formula: formulaPrefix + "@" + s}, nil
}

// FromFormula maps a Homebrew formula name to a Version. It reports false
// for formulas outside the php family (including php extensions such as
// "php-cs-fixer", which are not runtimes).
func FromFormula(formula string) (Version, bool) {
	if formula == formulaPrefix {
		return Default(), true
	}
	rest, ok := strings.CutPrefix(formula, formulaPrefix+"@")
	if !ok || !idPattern.MatchString(rest) {
		return Unknown, false
	}
	return Version{ID: rest, Formula: formula}, true
}

// ParseBanner extracts the MAJOR.MINOR version from `php -v` output.
// It reports false when no version can be found.
func ParseBanner(output string) (Version, bool) {
	m := bannerPattern.FindStringSubmatch(output)
	if m == nil {
		return Unknown, false
	}
	v, err := FromID(m[1])
	if err != nil {
		return Unknown, false
	}
	return v, true
}

// IsDefault reports whether v is the unversioned "php" formula.
func (v Version) IsDefault() bool {
	return v.ID == DefaultID
}

// IsUnknown reports whether v is the unknown sentinel.
func (v Version) IsUnknown() bool {
	return v.ID == ""
}

// String returns the version identifier, or "unknown" for the sentinel.
func (v Version) String() string {
	if v.IsUnknown() {
		return "unknown"
	}
	return v.ID
}

// Compare orders versions numerically by MAJOR.MINOR, with "default" after
// every numbered version (it aliases the newest release) and the unknown
// sentinel before everything.
func Compare(a, b Version) int {
	switch {
	case a == b:
		return 0
	case a.IsUnknown():
		return -1
	case b.IsUnknown():
		return 1
	case a.IsDefault():
		return 1
	case b.IsDefault():
		return -1
	}
	return semver.Compare("v"+a.ID, "v"+b.ID)
}

// Sort orders versions in place, oldest first, "default" last.
func Sort(versions []Version) {
	slices.SortFunc(versions, Compare)
}
