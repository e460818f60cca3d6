package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/phpswitch/phpswitch/pkg/brew"
	"github.com/phpswitch/phpswitch/pkg/phpver"
)

func pickerFixture(t *testing.T) []pickerItem {
	t.Helper()
	mk := func(id string, linked, active bool) pickerItem {
		v, err := phpver.FromID(id)
		if err != nil {
			t.Fatalf("FromID(%s): %v", id, err)
		}
		return pickerItem{
			Installed: brew.Installed{
				Version: v,
				Prefix:  "/opt/homebrew/opt/" + v.Formula,
				Linked:  linked,
			},
			Active: active,
		}
	}
	return []pickerItem{
		mk("7.4", false, false),
		mk("8.1", true, true),
		mk("8.2", false, false),
	}
}

func update(t *testing.T, m PickerModel, msg tea.Msg) (PickerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(PickerModel)
	if !ok {
		t.Fatalf("Update returned %T, want PickerModel", next)
	}
	return pm, cmd
}

func TestPickerCursorStartsOnLinked(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 (the linked runtime)", m.Cursor)
	}
}

func TestPickerNavigationStaysInBounds(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("Cursor after two ups = %d, want 0", m.Cursor)
	}

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	}
	if m.Cursor != 2 {
		t.Errorf("Cursor after five downs = %d, want 2", m.Cursor)
	}
}

func TestPickerEnterSelects(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Selected == nil {
		t.Fatal("Selected is nil after enter")
	}
	if m.Selected.ID != "8.2" {
		t.Errorf("Selected = %s, want 8.2", m.Selected.ID)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestPickerQuitWithoutSelection(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if m.Selected != nil {
		t.Errorf("Selected = %v, want nil after q", m.Selected)
	}
	if cmd == nil {
		t.Error("q should quit the program")
	}
}

func TestPickerScrollsOffset(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))
	m.Cursor = 0
	m.Height = 2

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	if m.Cursor != 2 {
		t.Fatalf("Cursor = %d, want 2", m.Cursor)
	}
	if m.Offset != 1 {
		t.Errorf("Offset = %d, want 1 (cursor kept visible)", m.Offset)
	}
}

func TestPickerWindowSizeClampsHeight(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 8})
	if m.Height != 5 {
		t.Errorf("Height = %d, want the minimum 5", m.Height)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	if m.Height != 24 {
		t.Errorf("Height = %d, want 24", m.Height)
	}
}

func TestPickerViewShowsVersionsAndCursor(t *testing.T) {
	m := NewPickerModel(pickerFixture(t))
	view := m.View()

	for _, want := range []string{"Select PHP Version", "7.4", "8.1", "8.2", "linked", "▸"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if !strings.Contains(view, "[2/3]") {
		t.Errorf("View() missing position indicator [2/3]")
	}
}
