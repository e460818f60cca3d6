package cli

import (
	"strings"
	"testing"

	"github.com/phpswitch/phpswitch/pkg/config"
	"github.com/phpswitch/phpswitch/pkg/errors"
)

func TestApplyConfigValueBools(t *testing.T) {
	cfg := config.Default()

	if err := applyConfigValue(&cfg, config.KeyAutoRestartService, "false"); err != nil {
		t.Fatalf("set %s: %v", config.KeyAutoRestartService, err)
	}
	if cfg.AutoRestartService {
		t.Error("auto_restart_service still true")
	}

	if err := applyConfigValue(&cfg, config.KeyBackupEnabled, "false"); err != nil {
		t.Fatalf("set %s: %v", config.KeyBackupEnabled, err)
	}
	if cfg.BackupEnabled {
		t.Error("backup_enabled still true")
	}

	err := applyConfigValue(&cfg, config.KeyBackupEnabled, "maybe")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad bool: err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestApplyConfigValueMaxBackups(t *testing.T) {
	cfg := config.Default()

	if err := applyConfigValue(&cfg, config.KeyMaxBackups, "7"); err != nil {
		t.Fatalf("set max_backups=7: %v", err)
	}
	if cfg.MaxBackups != 7 {
		t.Errorf("MaxBackups = %d, want 7", cfg.MaxBackups)
	}

	for _, raw := range []string{"-1", "many"} {
		if err := applyConfigValue(&cfg, config.KeyMaxBackups, raw); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("max_backups=%q: err = %v, want %s", raw, err, errors.ErrCodeInvalidInput)
		}
	}
}

func TestApplyConfigValueDefaultVersion(t *testing.T) {
	cfg := config.Default()

	if err := applyConfigValue(&cfg, config.KeyDefaultVersion, "8.1"); err != nil {
		t.Fatalf("set default_version=8.1: %v", err)
	}
	if cfg.DefaultVersion != "8.1" {
		t.Errorf("DefaultVersion = %q, want 8.1", cfg.DefaultVersion)
	}

	// Clearing the default is allowed.
	if err := applyConfigValue(&cfg, config.KeyDefaultVersion, ""); err != nil {
		t.Fatalf("clear default_version: %v", err)
	}
	if cfg.DefaultVersion != "" {
		t.Errorf("DefaultVersion = %q, want empty", cfg.DefaultVersion)
	}

	err := applyConfigValue(&cfg, config.KeyDefaultVersion, "latest")
	if !errors.Is(err, errors.ErrCodeInvalidVersion) {
		t.Errorf("default_version=latest: err = %v, want %s", err, errors.ErrCodeInvalidVersion)
	}
}

func TestApplyConfigValueUnknownKey(t *testing.T) {
	cfg := config.Default()

	err := applyConfigValue(&cfg, "color_scheme", "dark")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
	if sug := errors.GetSuggestion(err); !strings.Contains(sug, config.KeyMaxBackups) {
		t.Errorf("suggestion %q should list the valid keys", sug)
	}
}

func TestConfigValuesCoversAllKeys(t *testing.T) {
	values := configValues(config.Default())

	for _, key := range configKeys {
		if _, ok := values[key]; !ok {
			t.Errorf("configValues missing key %q", key)
		}
	}
	if len(values) != len(configKeys) {
		t.Errorf("configValues has %d entries, want %d", len(values), len(configKeys))
	}
}
