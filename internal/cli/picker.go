package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/phpver"
	"github.com/phpswitch/phpswitch/pkg/switcher"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// pickerItem is one selectable runtime with its current role.
type pickerItem struct {
	Installed brew.Installed
	Active    bool // PATH currently executes this runtime
}

// PickerModel is the bubbletea model for interactive version selection.
type PickerModel struct {
	Items    []pickerItem
	Cursor   int
	Selected *phpver.Version
	Height   int
	Offset   int
}

// NewPickerModel creates a picker over the installed runtimes, with the
// cursor preset to the linked one.
func NewPickerModel(items []pickerItem) PickerModel {
	m := PickerModel{
		Items:  items,
		Height: 15,
	}
	for i, it := range items {
		if it.Installed.Linked {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			v := m.Items[m.Cursor].Installed.Version
			m.Selected = &v
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select PHP Version"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ switch  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Items) {
		end = len(m.Items)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		it := m.Items[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		var marks []string
		if it.Installed.Linked {
			marks = append(marks, iconLinked+" linked")
		}
		if it.Active {
			marks = append(marks, "active")
		}

		rows = append(rows, []string{
			cursor,
			it.Installed.Version.ID,
			it.Installed.Version.Formula,
			strings.Join(marks, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Version", "Formula", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case isCurrent && col == 3:
				return base.Foreground(colorGray).Bold(true)
			case isCurrent:
				return base.Foreground(colorGreen).Bold(true)
			case col == 1:
				return base.Foreground(colorWhite)
			case col == 3:
				return base.Foreground(colorGreen)
			default:
				return base.Foreground(colorGray)
			}
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))

	return b.String()
}

// runPicker drives the interactive selection shown when phpswitch runs
// with no subcommand on a terminal.
func runPicker(cmd *cobra.Command) error {
	eng, err := buildEngine(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	installed, err := eng.registry.Installed(ctx)
	if err != nil {
		return err
	}
	if len(installed) == 0 {
		printInfo("No PHP versions installed")
		printNextStep("install one", "phpswitch install <version>")
		return nil
	}

	active := eng.resolver.Active(ctx)
	items := make([]pickerItem, len(installed))
	for i, inst := range installed {
		items[i] = pickerItem{
			Installed: inst,
			Active:    active.BinaryPath != "" && active.Version.ID == inst.Version.ID,
		}
	}

	p := tea.NewProgram(NewPickerModel(items))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(PickerModel)
	if !ok || fm.Selected == nil {
		printDetail("No selection made")
		return nil
	}

	printInfo("Switching to PHP %s", StyleHighlight.Render(fm.Selected.ID))
	printNewline()
	return runSwitch(cmd, eng, switcher.Request{Version: *fm.Selected})
}
