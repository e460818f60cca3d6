package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
	"github.com/phpswitch/phpswitch/pkg/project"
	"github.com/phpswitch/phpswitch/pkg/switcher"
)

// newProjectCmd creates the project command group.
func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Read or write the per-project .php-version pin",
		Long: `Project works with .php-version pin files. Bare, it shows the nearest
pin above the current directory. "set" writes one here, and "use"
switches to whatever the nearest pin says.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPin()
		},
	}

	cmd.AddCommand(newProjectSetCmd())
	cmd.AddCommand(newProjectUseCmd())

	return cmd
}

func showPin() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	pin, found, err := project.FindVersion(cwd)
	if err != nil {
		return err
	}
	if !found {
		printInfo("No %s found between here and the filesystem root", project.PinFileName)
		printNextStep("pin a version", "phpswitch project set <version>")
		return nil
	}

	printKeyValue("Pinned", pin.Version.String())
	printKeyValue("File", pin.Path)
	return nil
}

func newProjectSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <version>",
		Short: "Write a .php-version pin in the current directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := phpver.FromID(args[0])
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			path, err := project.SetVersion(cwd, v)
			if err != nil {
				return err
			}

			printSuccess("Pinned PHP %s", v)
			printFile(path)
			printNextStep("apply it", "phpswitch project use")
			return nil
		},
	}
}

func newProjectUseCmd() *cobra.Command {
	var (
		install   bool
		noRestart bool
	)

	cmd := &cobra.Command{
		Use:   "use",
		Short: "Switch to the version the nearest pin names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			pin, found, err := project.FindVersion(cwd)
			if err != nil {
				return err
			}
			if !found {
				return errors.New(errors.ErrCodePinNotFound, "no %s found between %s and the filesystem root", project.PinFileName, cwd).
					WithSuggestion("create one with `phpswitch project set <version>`")
			}

			printInfo("Using PHP %s (pinned by %s)", pin.Version, pin.Path)
			return runSwitch(cmd, eng, switcher.Request{
				Version:          pin.Version,
				InstallIfMissing: install,
				NoRestart:        noRestart,
			})
		},
	}

	cmd.Flags().BoolVar(&install, "install", false, "install the pinned version when missing")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "do not restart the php-fpm service")

	return cmd
}
