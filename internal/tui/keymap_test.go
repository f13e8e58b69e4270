package tui

import (
	"slices"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"Eval", km.Eval},
		{"Compare", km.Compare},
		{"NextBackend", km.NextBackend},
		{"Clear", km.Clear},
		{"HistoryPrev", km.HistoryPrev},
		{"HistoryNext", km.HistoryNext},
		{"ScrollUp", km.ScrollUp},
		{"ScrollDown", km.ScrollDown},
		{"Quit", km.Quit},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			if !b.binding.Enabled() {
				t.Errorf("expected %s binding to be enabled", b.name)
			}
			if len(b.binding.Keys()) == 0 {
				t.Errorf("expected %s binding to have at least one key", b.name)
			}
			if b.binding.Help().Desc == "" {
				t.Errorf("expected %s binding to have help text", b.name)
			}
		})
	}
}

func TestDefaultKeyMap_QuitKeys(t *testing.T) {
	keys := DefaultKeyMap().Quit.Keys()
	for _, want := range []string{"esc", "ctrl+c"} {
		if !slices.Contains(keys, want) {
			t.Errorf("expected Quit binding to include %q", want)
		}
	}
	// q must stay free for typing expressions.
	if slices.Contains(keys, "q") {
		t.Error("Quit binding must not capture 'q'")
	}
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp should not be empty")
	}
	total := 0
	for _, col := range km.FullHelp() {
		total += len(col)
	}
	if total != 9 {
		t.Errorf("FullHelp lists %d bindings, want 9", total)
	}
}
