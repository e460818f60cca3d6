package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// newInstallCmd creates the install command.
func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <version>",
		Short: "Install a PHP version through Homebrew",
		Long: `Install downloads and builds the Homebrew formula for the given PHP
version without linking it.

Examples:
  phpswitch install 8.3
  phpswitch install default   # the unversioned php formula`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := phpver.FromID(args[0])
			if err != nil {
				return err
			}
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			start := time.Now()
			err = runWithSpinner(cmd.Context(), "Installing "+v.Formula+" (this can take a few minutes)...", func() error {
				return eng.brew.Install(cmd.Context(), v)
			})
			if err != nil {
				return err
			}

			printSuccess("Installed %s %s", v.Formula, StyleDim.Render("("+time.Since(start).Round(time.Second).String()+")"))
			printNextStep("switch to it", "phpswitch switch "+v.ID)
			return nil
		},
	}
}
