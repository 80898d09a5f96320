package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.gpl")
	src := "GIMP Palette\nName: two\nColumns: 2\n# comment\n  0   0   0\tBlack\n255 255 255\tWhite\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("palette = %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{127, 127, 127}) {
		t.Fatalf("midpoint = %v, want 127 grey", got)
	}
	if got := p.Lookup(1.5); got != (RGB{255, 255, 255}) {
		t.Fatalf("lookup past end = %v, want last color", got)
	}
}

func TestLoadGPLRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	os.WriteFile(path, []byte("GIMP Palette\nName: empty\n"), 0644)
	if _, err := LoadGPL(path); err == nil {
		t.Fatalf("expected error for palette without colors")
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	if err != nil || p.Name != "pianola" {
		t.Fatalf("default palette = %v, %v", p, err)
	}
	th := New(p)
	if th.WhiteKey() != "#ece6d6" {
		t.Fatalf("white key = %s, want ivory", th.WhiteKey())
	}
	if th.BlackKey() != "#121014" {
		t.Fatalf("black key = %s, want ebony", th.BlackKey())
	}
}

func TestSurfaceSitsBetweenEbonyAndMuted(t *testing.T) {
	p := &Palette{Name: "ramp", Colors: []RGB{{0, 0, 0}, {0, 0, 0}, {200, 200, 200}}}
	th := New(p)
	// 0.15 of a three-color ramp falls inside the first (black) span
	if th.Surface() != "#000000" {
		t.Fatalf("surface = %s, want first span", th.Surface())
	}

	th = New(Default())
	for _, other := range []string{string(th.BG()), string(th.Muted()), string(th.FG())} {
		if string(th.Surface()) == other {
			t.Errorf("surface %s collides with %s", th.Surface(), other)
		}
	}
}
