package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/project"
)

// newCurrentCmd creates the current command.
func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the active, linked, and pinned PHP versions",
		Long: `Current shows which PHP a new shell would run (active), which formula
Homebrew has linked, and the nearest .php-version pin. A warning is
printed when PATH resolves php to something other than the brew link.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			active := eng.resolver.Active(cmd.Context())

			if active.BinaryPath == "" {
				printKeyValue("Active", "none")
			} else {
				printKeyValue("Active", active.Version.String()+"  "+StyleDim.Render(active.BinaryPath))
			}

			if active.Linked.IsUnknown() {
				printKeyValue("Linked", "none")
			} else {
				printKeyValue("Linked", active.Linked.String())
			}

			if cwd, err := os.Getwd(); err == nil {
				pin, found, err := project.FindVersion(cwd)
				switch {
				case err != nil:
					printWarning("pin lookup failed: %v", err)
				case found:
					printKeyValue("Pinned", pin.Version.String()+"  "+StyleDim.Render(pin.Path))
				}
			}

			if active.PathMismatch {
				printNewline()
				if active.BinaryPath == "" {
					printWarning("no php on PATH even though %s is linked", active.Linked)
				} else {
					printWarning("PATH resolves php to %s, not the linked %s", active.BinaryPath, active.Linked)
				}
				printNextStep("fix it", "phpswitch switch "+active.Linked.String())
			}
			return nil
		},
	}
}
