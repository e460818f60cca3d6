// Package project locates and writes per-project PHP version pins.
//
// A pin is a .php-version file holding a single version identifier. The
// nearest pin wins: lookup starts in a directory and walks parent by
// parent until the filesystem root. The walk follows the logical path the
// caller named (a pin behind a symlinked project directory is found where
// the user works), while a visited set of resolved real paths keeps
// symlinked ancestors from being read twice.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// PinFileName is the per-project pin file.
const PinFileName = ".php-version"

const pinPerm = 0o644

// Pin is a located project version pin.
type Pin struct {
	Version phpver.Version

	// Path is the pin file that supplied the version.
	Path string
}

// Dir returns the project directory the pin governs.
func (p Pin) Dir() string {
	return filepath.Dir(p.Path)
}

// FindVersion walks from startDir toward the filesystem root and returns
// the nearest pin. A malformed pin file stops the search with an error
// naming the file; a clean walk with no pin returns found=false.
func FindVersion(startDir string) (Pin, bool, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Pin{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve start directory %s", startDir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return Pin{}, false, errors.New(errors.ErrCodeInvalidInput, "%s is not a directory", startDir)
	}

	visited := map[string]bool{}
	for {
		key := dir
		if real, err := filepath.EvalSymlinks(dir); err == nil {
			key = real
		}
		if !visited[key] {
			visited[key] = true

			pin, ok, err := readPin(filepath.Join(dir, PinFileName))
			if err != nil {
				return Pin{}, false, err
			}
			if ok {
				return pin, true, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Pin{}, false, nil
		}
		dir = parent
	}
}

// SetVersion writes a pin for v into dir and returns the pin file path.
func SetVersion(dir string, v phpver.Version) (string, error) {
	path := filepath.Join(dir, PinFileName)
	if err := renameio.WriteFile(path, []byte(v.ID+"\n"), pinPerm); err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigWriteFailed, err, "write %s", path).
			WithSuggestion("check permissions on %s", dir)
	}
	return path, nil
}

func readPin(path string) (Pin, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Pin{}, false, nil
	}
	if err != nil {
		return Pin{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}

	raw := strings.TrimSpace(string(data))
	v, err := phpver.FromID(raw)
	if err != nil {
		return Pin{}, false, errors.New(errors.ErrCodeInvalidVersion, "%s holds %q, not a PHP version", path, raw).
			WithSuggestion("fix the file or remove it")
	}
	return Pin{Version: v, Path: path}, true, nil
}
