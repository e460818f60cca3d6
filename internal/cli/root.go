package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phpswitch/phpswitch/pkg/buildinfo"
	"github.com/phpswitch/phpswitch/pkg/config"
)

// Execute runs the phpswitch CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd assembles the phpswitch command tree.
func newRootCmd() *cobra.Command {
	var (
		verbose       bool
		configPath    string
		noInteractive bool
	)

	root := &cobra.Command{
		Use:   "phpswitch",
		Short: "phpswitch switches the active Homebrew PHP version",
		Long: `phpswitch manages which Homebrew PHP runtime your machine uses: it
relinks the brew formula, keeps your shell startup file pointing at the
right bin directories, and restarts the matching php-fpm service.

Run it bare for an interactive version picker, or use the subcommands
for scripting.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if noInteractive || !term.IsTerminal(int(os.Stdout.Fd())) {
				return cmd.Help()
			}
			return runPicker(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/"+config.FileName+")")
	root.Flags().BoolVar(&noInteractive, "no-interactive", false, "print help instead of the interactive picker")

	root.AddCommand(newSwitchCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newCurrentCmd())
	root.AddCommand(newInstallCmd())
	root.AddCommand(newUninstallCmd())
	root.AddCommand(newProjectCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}
