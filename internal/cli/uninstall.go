package cli

import (
	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/errors"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

// newUninstallCmd creates the uninstall command.
func newUninstallCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "uninstall <version>",
		Short: "Uninstall a Homebrew PHP version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := phpver.FromID(args[0])
			if err != nil {
				return err
			}
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			linked, haveLink, err := eng.brew.LinkedFormula(ctx)
			wasLinked := err == nil && haveLink && linked.ID == v.ID
			if wasLinked && !force {
				return errors.New(errors.ErrCodeInvalidInput, "PHP %s is the currently linked version", v).
					WithSuggestion("switch to another version first, or pass --force")
			}

			err = runWithSpinner(ctx, "Uninstalling "+v.Formula+"...", func() error {
				return eng.brew.Uninstall(ctx, v)
			})
			if err != nil {
				return err
			}

			printSuccess("Uninstalled %s", v.Formula)
			if wasLinked {
				printWarning("nothing is linked now")
				printNextStep("pick a version", "phpswitch switch <version>")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "uninstall even if the version is currently linked")

	return cmd
}
