package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
	"github.com/phpswitch/phpswitch/pkg/project"
	"github.com/phpswitch/phpswitch/pkg/switcher"
)

// newSwitchCmd creates the switch command.
func newSwitchCmd() *cobra.Command {
	var (
		install   bool
		noRestart bool
	)

	cmd := &cobra.Command{
		Use:     "switch [version]",
		Aliases: []string{"use"},
		Short:   "Switch the active PHP version",
		Long: `Switch relinks Homebrew to the requested PHP version, rewrites the
managed block in your shell startup file, and reconciles php-fpm services.

Without an argument the version comes from the nearest .php-version pin,
then from default_version in the config.

Examples:
  phpswitch switch 8.2
  phpswitch use 8.2 --install
  phpswitch switch             # nearest .php-version pin or config default`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			v, source, err := resolveTarget(eng, args)
			if err != nil {
				return err
			}
			if source != "" {
				printInfo("Using PHP %s (%s)", v, source)
			}
			return runSwitch(cmd, eng, switcher.Request{
				Version:          v,
				InstallIfMissing: install,
				NoRestart:        noRestart,
			})
		},
	}

	cmd.Flags().BoolVar(&install, "install", false, "install the version first when missing")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "do not restart the php-fpm service")

	return cmd
}

// resolveTarget picks the switch target from the argument, the nearest
// project pin, or the configured default, in that order. The returned
// source is empty for an explicit argument.
func resolveTarget(eng *engine, args []string) (phpver.Version, string, error) {
	if len(args) == 1 {
		v, err := phpver.FromID(args[0])
		return v, "", err
	}

	if cwd, err := os.Getwd(); err == nil {
		pin, found, err := project.FindVersion(cwd)
		if err != nil {
			return phpver.Unknown, "", err
		}
		if found {
			return pin.Version, "pinned by " + pin.Path, nil
		}
	}

	if eng.cfg.DefaultVersion != "" {
		v, err := phpver.FromID(eng.cfg.DefaultVersion)
		if err != nil {
			return phpver.Unknown, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "default_version in config")
		}
		return v, "config default_version", nil
	}

	return phpver.Unknown, "", errors.New(errors.ErrCodeInvalidInput, "no version given and no pin or default applies").
		WithSuggestion("run `phpswitch list`, or pin one with `phpswitch project set <version>`")
}

// runSwitch executes the pipeline and renders the report. Shared by the
// switch command, `project use`, and the interactive picker.
func runSwitch(cmd *cobra.Command, eng *engine, req switcher.Request) error {
	rep := eng.switcher.Switch(cmd.Context(), req)
	renderReport(rep)
	if !rep.Succeeded {
		err := rep.Err()
		printHint(errors.GetSuggestion(err))
		return err
	}
	return nil
}

// renderReport prints stage outcomes, warnings, and the final state.
func renderReport(rep *switcher.Report) {
	for _, st := range rep.Stages {
		icon := styleIconSuccess.Render(iconSuccess)
		if st.Err != nil {
			icon = styleIconError.Render(iconError)
		}
		fmt.Println(icon + " " + string(st.Stage) + " " + StyleDim.Render(st.Duration.Round(time.Millisecond).String()))
	}

	for _, w := range rep.Warnings {
		printWarning("%s", w.Message)
		printHint(w.Suggestion)
	}

	if !rep.Succeeded {
		return
	}

	printNewline()
	printSuccess("Switched to PHP %s", StyleHighlight.Render(rep.Requested.String()))
	if rep.ShellChanged {
		printFile(rep.ShellFile)
	}
	if rep.Backup != "" {
		printDetail("backup: %s", rep.Backup)
	}
	for _, name := range rep.StoppedServices {
		printDetail("stopped %s", name)
	}
	if rep.ShellChanged {
		printNextStep("reload your shell", "exec $SHELL")
	}
}
