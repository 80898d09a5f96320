package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"golang.org/x/time/rate"

	"go-pianola/debug"
	"go-pianola/keyboard"
	"go-pianola/script"
	"go-pianola/sequencer"
	"go-pianola/theme"
	"go-pianola/widgets"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// qwerty row mapped onto C4..C5
var noteKeys = map[string]string{
	"a": "C4", "w": "C♯4", "s": "D4", "e": "D♯4", "d": "E4",
	"f": "F4", "t": "F♯4", "g": "G4", "y": "G♯4", "h": "A4",
	"u": "A♯4", "j": "B4", "k": "C5",
}

// layoutBounds holds cached layout info
type layoutBounds struct {
	pianoTop int
}

type Model struct {
	Player     *sequencer.Pianola
	Keyboard   *keyboard.Keyboard
	Theme      *theme.Theme
	ScriptPath string
	Delay      time.Duration // default group delay for reloaded scripts

	piano     *widgets.Piano
	stepLimit *rate.Limiter
	quitting  bool
	showHelp  bool
	status    string
	tooltip   string
	bounds    *layoutBounds
}

type UpdateMsg struct{}

func NewModel(player *sequencer.Pianola, kb *keyboard.Keyboard, th *theme.Theme, scriptPath string, delay time.Duration) Model {
	opts := kb.Options()
	return Model{
		Player:     player,
		Keyboard:   kb,
		Theme:      th,
		ScriptPath: scriptPath,
		Delay:      delay,
		piano:      widgets.NewPiano(kb, th, opts.Large, opts.Signs),
		stepLimit:  rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		bounds:     &layoutBounds{},
	}
}

func ListenForUpdates(player *sequencer.Pianola) tea.Cmd {
	return func() tea.Msg {
		<-player.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Player)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			m.Player.Stop()
			return m, tea.Quit

		case " ", "space":
			if m.Player.State().Playing {
				m.Player.Pause()
			} else {
				m.Player.Play()
			}

		case "x", "esc":
			m.Player.Stop()

		case "n":
			if m.stepLimit.Allow() {
				m.Player.Step()
			}

		case "r":
			m.status = m.reload()

		case "c":
			m.Player.Free()

		case "?":
			m.showHelp = !m.showHelp

		default:
			if name, ok := noteKeys[key]; ok {
				if idx, found := m.Keyboard.Lookup(name); found {
					m.toggle(idx)
				}
			}
		}

	case tea.MouseMsg:
		idx := m.piano.HitTest(msg.X, msg.Y-m.bounds.pianoTop)
		m.tooltip = ""
		if idx >= 0 {
			m.tooltip = m.Keyboard.KeyAt(idx).Name()
		}
		if idx >= 0 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.toggle(idx)
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Player)
	}

	return m, nil
}

// toggle presses or releases a key by hand
func (m *Model) toggle(idx int) {
	if m.Keyboard.Options().ReadOnly {
		return
	}
	if m.Keyboard.IsActive(idx) {
		m.Player.Free(idx)
		return
	}
	m.Player.Take(idx)
}

func (m *Model) reload() string {
	if m.ScriptPath == "" {
		return "no script"
	}
	s, err := script.Load(m.ScriptPath)
	if err != nil {
		debug.Log("tui", "reload: %v", err)
		return err.Error()
	}
	m.Player.Stop()
	if err := s.Apply(m.Player, m.Delay); err != nil {
		return err.Error()
	}
	m.Player.Dump("reload")
	name := s.Name
	if name == "" {
		name = filepath.Base(m.ScriptPath)
	}
	return fmt.Sprintf("loaded %s (%d groups)", name, len(s.Groups))
}

func (m Model) header() string {
	st := m.Player.State()

	playState := string(m.Theme.Symbols.Stop) + " STOP"
	switch {
	case st.Playing:
		playState = string(m.Theme.Symbols.Play) + " PLAY"
	case st.Group > 0 || st.Frame > 0:
		playState = string(m.Theme.Symbols.Pause) + " PAUSE"
	}

	if st.Groups == 0 {
		return fmt.Sprintf("go-pianola  %s  empty", playState)
	}
	if st.Group >= st.Groups {
		return fmt.Sprintf("go-pianola  %s  done", playState)
	}

	remaining := "forever"
	if d, ok := m.Player.Duration(); ok {
		remaining = durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
	}
	return fmt.Sprintf("go-pianola  %s  %s of %d groups  frame %d/%d  %s  %s  %s",
		playState, humanize.Ordinal(st.Group+1), st.Groups,
		st.Frame, st.Frames, st.Delay, st.Repeat, remaining)
}

func (m Model) helpSections() []widgets.KeySection {
	sections := []widgets.KeySection{
		{Title: "Playback", Keys: []widgets.KeyBinding{
			{Key: "space", Desc: "play / pause"},
			{Key: "x, esc", Desc: "stop and clear the queue"},
			{Key: "n", Desc: "step one frame"},
			{Key: "r", Desc: "reload script"},
		}},
	}
	keys := []widgets.KeyBinding{{Key: "c", Desc: "release every key"}}
	if !m.Keyboard.Options().ReadOnly {
		keys = append(keys,
			widgets.KeyBinding{Key: "a w s ... k", Desc: "toggle C4 to C5"},
			widgets.KeyBinding{Key: "click", Desc: "toggle a key"},
		)
	}
	sections = append(sections, widgets.KeySection{Title: "Keys", Keys: keys})
	return append(sections, widgets.KeySection{Keys: []widgets.KeyBinding{
		{Key: "?", Desc: "close help"},
		{Key: "q", Desc: "quit"},
	}})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	header := headerStyle.Render(m.header())
	pianoView := m.piano.Render()

	var help string
	if m.showHelp {
		help = dimStyle.Render(widgets.RenderKeyHelp(m.helpSections()))
	} else {
		help = dimStyle.Render(widgets.RenderKeyLine([]widgets.KeyBinding{
			{Key: "space", Desc: "play/pause"},
			{Key: "x", Desc: "stop"},
			{Key: "n", Desc: "step"},
			{Key: "?", Desc: "help"},
			{Key: "q", Desc: "quit"},
		}))
	}

	// Compute layout bounds
	m.bounds.pianoTop = 1 + lipgloss.Height(header) + 1

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(pianoView)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
	}
	if m.tooltip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(m.tooltip))
	}

	return out.String()
}
