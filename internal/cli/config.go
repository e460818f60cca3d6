package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/config"
	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// configKeys lists the recognized settings in display order.
var configKeys = []string{
	config.KeyAutoRestartService,
	config.KeyBackupEnabled,
	config.KeyMaxBackups,
	config.KeyDefaultVersion,
}

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write phpswitch settings",
		Long: `Config reads and writes the flat key=value settings file
(~/` + config.FileName + ` unless --config points elsewhere).

Keys:
  ` + strings.Join(configKeys, "\n  "),
	}

	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			values := configValues(eng.cfg)

			if len(args) == 0 {
				for _, k := range configKeys {
					fmt.Println(StyleDim.Render(fmt.Sprintf("%-22s", k)) + " " + StyleValue.Render(values[k]))
				}
				return nil
			}

			v, ok := values[args[0]]
			if !ok {
				return unknownKeyErr(args[0])
			}
			fmt.Println(v)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			cfg := eng.cfg
			if err := applyConfigValue(&cfg, args[0], args[1]); err != nil {
				return err
			}

			path, err := configTargetPath(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			printSuccess("Set %s=%s", args[0], args[1])
			printFile(path)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTargetPath(cmd)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// configTargetPath resolves where settings are written: the --config flag
// when given, otherwise the home dotfile.
func configTargetPath(cmd *cobra.Command) (string, error) {
	if path, err := cmd.Flags().GetString("config"); err == nil && path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func configValues(cfg config.Config) map[string]string {
	return map[string]string{
		config.KeyAutoRestartService: strconv.FormatBool(cfg.AutoRestartService),
		config.KeyBackupEnabled:      strconv.FormatBool(cfg.BackupEnabled),
		config.KeyMaxBackups:         strconv.Itoa(cfg.MaxBackups),
		config.KeyDefaultVersion:     cfg.DefaultVersion,
	}
}

func applyConfigValue(cfg *config.Config, key, raw string) error {
	switch key {
	case config.KeyAutoRestartService, config.KeyBackupEnabled:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return badValueErr(key, raw, "true or false")
		}
		if key == config.KeyAutoRestartService {
			cfg.AutoRestartService = b
		} else {
			cfg.BackupEnabled = b
		}
	case config.KeyMaxBackups:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badValueErr(key, raw, "a non-negative integer")
		}
		cfg.MaxBackups = n
	case config.KeyDefaultVersion:
		if raw != "" {
			if _, err := phpver.FromID(raw); err != nil {
				return err
			}
		}
		cfg.DefaultVersion = raw
	default:
		return unknownKeyErr(key)
	}
	return nil
}

func unknownKeyErr(key string) error {
	return errors.New(errors.ErrCodeInvalidInput, "unknown config key %q", key).
		WithSuggestion("valid keys: %s", strings.Join(configKeys, ", "))
}

func badValueErr(key, raw, want string) error {
	return errors.New(errors.ErrCodeInvalidInput, "%s must be %s, got %q", key, want, raw)
}
