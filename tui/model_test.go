package tui

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-pianola/keyboard"
	"go-pianola/sequencer"
	"go-pianola/theme"
)

// stillClock never fires; tests drive the player with key presses
type stillClock struct{}

type stillTicker struct{}

func (stillClock) Every(time.Duration, func()) sequencer.Ticker { return stillTicker{} }
func (stillTicker) Stop()                                       {}

func newTestModel(readOnly bool) Model {
	kb := keyboard.New(keyboard.Options{Octaves: 1, ReadOnly: readOnly})
	p := sequencer.New(kb, sequencer.WithClock(stillClock{}))
	return NewModel(p, kb, theme.New(theme.Default()), "", 0)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		if k == " " {
			msg = tea.KeyMsg{Type: tea.KeySpace}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNoteKeysToggle(t *testing.T) {
	m := press(newTestModel(false), "a", "d", "g")
	if got := m.Keyboard.Active(); !reflect.DeepEqual(got, []int{0, 4, 7}) {
		t.Fatalf("active = %v, want C4 E4 G4", got)
	}
	m = press(m, "d")
	if got := m.Keyboard.Active(); !reflect.DeepEqual(got, []int{0, 7}) {
		t.Fatalf("active = %v, want E4 released", got)
	}
	m = press(m, "c")
	if got := m.Keyboard.Active(); len(got) != 0 {
		t.Fatalf("active = %v, want all free", got)
	}
}

func TestReadOnlyIgnoresNoteKeys(t *testing.T) {
	m := press(newTestModel(true), "a", "k")
	if got := m.Keyboard.Active(); len(got) != 0 {
		t.Fatalf("active = %v, want none on read-only keyboard", got)
	}
}

func TestTransportKeys(t *testing.T) {
	m := newTestModel(true)
	m.Player.Save([]any{"C4", "E4"})

	m = press(m, " ")
	if !m.Player.State().Playing {
		t.Fatalf("space should start playback")
	}
	if got := m.Keyboard.Active(); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("active = %v, want C4", got)
	}
	m = press(m, " ")
	if m.Player.State().Playing {
		t.Fatalf("space should pause")
	}
	m = press(m, "x")
	if st := m.Player.State(); st.Groups != 0 {
		t.Fatalf("stop should clear the queue, groups = %d", st.Groups)
	}
}

func TestManualStepIsRateLimited(t *testing.T) {
	m := newTestModel(true)
	m.Player.Save([]any{"C4", "E4"})
	m = press(m, "n", "n")
	if got := m.Keyboard.Active(); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("active = %v, want only the first step taken", got)
	}
}

func TestMouseTogglesKey(t *testing.T) {
	m := newTestModel(false)
	m.View()
	top := m.bounds.pianoTop

	next, _ := m.Update(tea.MouseMsg{X: 4, Y: top + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if got := m.Keyboard.Active(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("active = %v, want D4", got)
	}
	if m.tooltip != "D4" {
		t.Fatalf("tooltip = %q, want D4", m.tooltip)
	}

	next, _ = m.Update(tea.MouseMsg{X: 40, Y: top, Action: tea.MouseActionMotion})
	m = next.(Model)
	if m.tooltip != "" {
		t.Fatalf("tooltip = %q, want empty off the keyboard", m.tooltip)
	}
}

func TestReloadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.json")
	src := `{"name":"song","groups":[{"frames":["C4"]},{"frames":["D4"],"delay":250}]}`
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	m := newTestModel(true)
	m.ScriptPath = path
	m = press(m, "r")
	if m.status != "loaded song (2 groups)" {
		t.Fatalf("status = %q", m.status)
	}
	if st := m.Player.State(); st.Groups != 2 {
		t.Fatalf("groups = %d, want 2", st.Groups)
	}
	if !strings.Contains(m.View(), "1st of 2 groups") {
		t.Fatalf("header missing ordinal group:\n%s", m.View())
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"groups":[{"frames":["C4"]},{"frames":[true]}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	m.ScriptPath = bad
	m = press(m, "r")
	if !strings.Contains(m.status, "group 1: bad frame") {
		t.Fatalf("status = %q, want bad frame error", m.status)
	}
	if st := m.Player.State(); st.Groups != 0 {
		t.Fatalf("groups = %d, want empty after a bad reload", st.Groups)
	}

	m.ScriptPath = filepath.Join(t.TempDir(), "missing.json")
	m = press(m, "r")
	if !strings.Contains(m.status, "read script") {
		t.Fatalf("status = %q, want read error", m.status)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(false)
	if strings.Contains(m.View(), "toggle C4 to C5") {
		t.Fatalf("full help shown before ?")
	}
	m = press(m, "?")
	view := m.View()
	for _, want := range []string{"Playback", "toggle C4 to C5", "release every key"} {
		if !strings.Contains(view, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
