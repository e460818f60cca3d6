package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCacheCmd creates the cache management command.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the availability cache",
		Long: `Cache manages the on-disk snapshot of PHP versions Homebrew can
install. The snapshot is good for an hour; list serves it while fresh
and falls back to it when Homebrew is unreachable.`,
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCacheRefreshCmd())
	cmd.AddCommand(newCachePathCmd())

	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the availability snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			if err := eng.registry.ClearCache(); err != nil {
				return err
			}
			printSuccess("Cleared the availability cache")
			printDetail("File: %s", eng.registry.CachePath())
			return nil
		},
	}
}

func newCacheRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-query Homebrew and overwrite the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			var n int
			var stale bool
			err = runWithSpinner(cmd.Context(), "Searching Homebrew for PHP versions...", func() error {
				listing, err := eng.registry.Refresh(cmd.Context())
				n = len(listing.Items)
				stale = listing.Stale
				return err
			})
			if err != nil {
				return err
			}
			if stale {
				printWarning("Homebrew was unreachable; the snapshot was left as it was")
				return nil
			}

			printSuccess("Cached %d available versions", n)
			return nil
		},
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the snapshot file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			fmt.Println(eng.registry.CachePath())
			return nil
		},
	}
}
