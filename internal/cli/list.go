package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/registry"
	"github.com/phpswitch/phpswitch/pkg/resolver"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed and available PHP versions",
		Long: `List shows the PHP versions installed through Homebrew and every
version Homebrew can install.

The available listing is cached for an hour; pass --no-cache to force a
live search. When Homebrew is unreachable an expired cache is shown with
a staleness notice instead of failing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			// Start the slow search first; the installed table renders
			// while it runs.
			prog := newProgress(eng.log)
			join := eng.registry.PrefetchAvailable(ctx, !noCache)

			installed, err := eng.registry.Installed(ctx)
			if err != nil {
				return err
			}
			active := eng.resolver.Active(ctx)
			renderInstalled(installed, active)

			var listing registry.Listing
			err = runWithSpinner(ctx, "Searching Homebrew for PHP versions...", func() error {
				var jerr error
				listing, jerr = join()
				return jerr
			})
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Loaded %d available versions", len(listing.Items)))

			printNewline()
			renderAvailable(listing)

			if listing.Stale {
				printWarning("Homebrew was unreachable; this listing is %s old", listing.Age().Round(time.Minute))
				printNextStep("refresh it", "phpswitch cache refresh")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the availability cache")

	return cmd
}

func renderInstalled(installed []brew.Installed, active resolver.Active) {
	fmt.Println(StyleTitle.Render("Installed"))

	if len(installed) == 0 {
		printInfo("No PHP versions installed")
		printNextStep("install one", "phpswitch install <version>")
		return
	}

	rows := [][]string{}
	for _, inst := range installed {
		var marks []string
		if inst.Linked {
			marks = append(marks, iconLinked+" linked")
		}
		if active.BinaryPath != "" && active.Version.ID == inst.Version.ID {
			marks = append(marks, "active")
		}
		rows = append(rows, []string{inst.Version.ID, inst.Version.Formula, strings.Join(marks, ", ")})
	}

	fmt.Println(versionTable([]string{"VERSION", "FORMULA", "STATUS"}, rows, 2))
}

func renderAvailable(listing registry.Listing) {
	fmt.Println(StyleTitle.Render("Available"))

	rows := [][]string{}
	for _, item := range listing.Items {
		mark := ""
		if item.Installed {
			mark = iconSuccess
		}
		rows = append(rows, []string{item.Version.ID, item.Version.Formula, mark})
	}

	fmt.Println(versionTable([]string{"VERSION", "FORMULA", "INSTALLED"}, rows, 2))
	printListingAge(listing.FetchedAt, listing.Stale)
}

// versionTable renders a bordered table whose markCol cells are drawn
// green.
func versionTable(headers []string, rows [][]string, markCol int) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorWhite)
			case markCol:
				return base.Foreground(colorGreen)
			default:
				return base.Foreground(colorGray)
			}
		}).
		Render()
}
