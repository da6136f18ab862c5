package tui

import (
	"testing"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// TestKeyMapUppercaseBindingsAcceptShiftAlias verifies behavior for the covered scenario.
func TestKeyMapUppercaseBindingsAcceptShiftAlias(t *testing.T) {
	km := newKeyMap()
	cases := []struct {
		name    string
		binding key.Binding
		msgs    []tea.KeyPressMsg
	}{
		{"new board", km.newBoard, []tea.KeyPressMsg{{Code: 'N', Text: "N"}, {Code: 'n', Mod: tea.ModShift}}},
		{"edit board", km.editBoard, []tea.KeyPressMsg{{Code: 'E', Text: "E"}, {Code: 'e', Mod: tea.ModShift}}},
		{"delete board", km.deleteBoard, []tea.KeyPressMsg{{Code: 'X', Text: "X"}, {Code: 'x', Mod: tea.ModShift}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, msg := range tc.msgs {
				if !key.Matches(msg, tc.binding) {
					t.Fatalf("expected %q to match %v", msg.String(), tc.binding.Keys())
				}
			}
		})
	}
	if key.Matches(tea.KeyPressMsg{Code: 'n', Text: "n"}, km.newBoard) {
		t.Fatal("expected lowercase n to stay on add task")
	}
}

// TestKeyMapHelpCoversBindings verifies behavior for the covered scenario.
func TestKeyMapHelpCoversBindings(t *testing.T) {
	km := newKeyMap()
	if got := len(km.ShortHelp()); got == 0 {
		t.Fatal("expected short help bindings")
	}
	seen := 0
	for _, group := range km.FullHelp() {
		for _, b := range group {
			if b.Help().Key == "" || b.Help().Desc == "" {
				t.Fatalf("binding %v missing help text", b.Keys())
			}
			seen++
		}
	}
	if seen != 17 {
		t.Fatalf("expected all 17 bindings in full help, got %d", seen)
	}
}
