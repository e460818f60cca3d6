// Package config loads and persists phpswitch settings.
//
// Settings live in ~/.phpswitch.conf as flat key=value lines ("properties"
// format), so the file stays editable by hand and greppable. Missing files
// and missing keys fall back to defaults; a malformed value never aborts a
// switch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/viper"

	"github.com/phpswitch/phpswitch/pkg/errors"
)

// FileName is the config dotfile name, resolved relative to the home
// directory.
const FileName = ".phpswitch.conf"

// Keys recognized in the config file.
const (
	KeyAutoRestartService = "auto_restart_service"
	KeyBackupEnabled      = "backup_enabled"
	KeyMaxBackups         = "max_backups"
	KeyDefaultVersion     = "default_version"
)

// Config holds the user-tunable behavior switches.
type Config struct {
	// AutoRestartService controls whether switching also restarts the
	// php-fpm service for the target version.
	AutoRestartService bool

	// BackupEnabled controls whether shell startup files are backed up
	// before every mutating edit.
	BackupEnabled bool

	// MaxBackups bounds how many timestamped backups are retained per
	// startup file. Zero disables pruning-by-count entirely.
	MaxBackups int

	// DefaultVersion is the version used when a switch is requested
	// without an explicit argument and no project pin applies. Empty
	// means "no opinion".
	DefaultVersion string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		AutoRestartService: true,
		BackupEnabled:      true,
		MaxBackups:         5,
		DefaultVersion:     "",
	}
}

// DefaultPath returns the canonical config file path (~/.phpswitch.conf).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// Load reads the config from the canonical path. Any problem reading or
// parsing the file degrades to the defaults; switching must keep working
// on a machine with a mangled config.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), err
	}
	cfg, err := readFile(path)
	if err != nil {
		return Default(), nil
	}
	return cfg, nil
}

// LoadFile reads the config from an explicit path (the --config flag).
// Unlike Load, a file the user asked for must exist and parse.
func LoadFile(path string) (Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return Default(), errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return cfg, nil
}

func readFile(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")

	def := Default()
	v.SetDefault(KeyAutoRestartService, def.AutoRestartService)
	v.SetDefault(KeyBackupEnabled, def.BackupEnabled)
	v.SetDefault(KeyMaxBackups, def.MaxBackups)
	v.SetDefault(KeyDefaultVersion, def.DefaultVersion)

	if err := v.ReadInConfig(); err != nil {
		return def, err
	}

	cfg := Config{
		AutoRestartService: v.GetBool(KeyAutoRestartService),
		BackupEnabled:      v.GetBool(KeyBackupEnabled),
		MaxBackups:         v.GetInt(KeyMaxBackups),
		DefaultVersion:     strings.TrimSpace(v.GetString(KeyDefaultVersion)),
	}
	if cfg.MaxBackups < 0 {
		cfg.MaxBackups = 0
	}
	return cfg, nil
}

// Save writes cfg to path atomically, preserving nothing from the previous
// file contents. Unknown keys a user added by hand are dropped; the file is
// ours.
func Save(cfg Config, path string) error {
	var b strings.Builder
	b.WriteString("# phpswitch configuration\n")
	fmt.Fprintf(&b, "%s=%t\n", KeyAutoRestartService, cfg.AutoRestartService)
	fmt.Fprintf(&b, "%s=%t\n", KeyBackupEnabled, cfg.BackupEnabled)
	fmt.Fprintf(&b, "%s=%d\n", KeyMaxBackups, cfg.MaxBackups)
	fmt.Fprintf(&b, "%s=%s\n", KeyDefaultVersion, cfg.DefaultVersion)

	if err := renameio.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeConfigWriteFailed, err, "write config %s", path)
	}
	return nil
}
