package widgets

import (
	"strings"
	"testing"

	"go-pianola/keyboard"
	"go-pianola/theme"
)

func oneOctave(signs bool) (*keyboard.Keyboard, *Piano) {
	kb := keyboard.New(keyboard.Options{Octaves: 1})
	return kb, NewPiano(kb, theme.New(theme.Default()), false, signs)
}

func TestPianoSize(t *testing.T) {
	_, p := oneOctave(false)
	if p.Width() != 24 || p.Height() != 3 {
		t.Fatalf("size = %dx%d, want 24x3", p.Width(), p.Height())
	}
	kb := keyboard.New(keyboard.DefaultOptions())
	big := NewPiano(kb, theme.New(theme.Default()), true, true)
	if big.Width() != 52*5 || big.Height() != 6 {
		t.Fatalf("large size = %dx%d, want 260x6", big.Width(), big.Height())
	}
}

func TestPianoHitTest(t *testing.T) {
	_, p := oneOctave(true)
	tests := []struct {
		x, y, want int
	}{
		{0, 0, 0},   // C4
		{2, 0, 1},   // C♯4 straddles C and D
		{3, 1, 1},   // still C♯4
		{2, 2, 0},   // white row under C♯ belongs to C
		{4, 2, 2},   // D4
		{8, 0, 4},   // E4, no black key above
		{11, 0, 6},  // F♯4
		{23, 2, 12}, // C5
		{4, 3, 2},   // signs row
		{24, 0, -1},
		{0, 4, -1},
		{-1, 0, -1},
	}
	for _, tt := range tests {
		if got := p.HitTest(tt.x, tt.y); got != tt.want {
			t.Errorf("HitTest(%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestPianoRender(t *testing.T) {
	kb, p := oneOctave(true)
	kb.Activate(2)
	out := p.Render()
	if n := strings.Count(out, "\n") + 1; n != p.Height() {
		t.Fatalf("rendered %d lines, want %d", n, p.Height())
	}
	for _, want := range []string{"C4", "D4", "C5", "│"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestRenderKeyLine(t *testing.T) {
	got := RenderKeyLine([]KeyBinding{{"space", "play"}, {"s", "stop"}})
	if got != "space play  s stop" {
		t.Fatalf("key line = %q", got)
	}
}
