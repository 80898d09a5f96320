package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Key faces
	WhiteKey  rune // █ idle white key
	BlackKey  rune // █ idle black key
	Pressed   rune // █ active key
	BlackGap  rune //   no black key between E-F and B-C
	KeyBorder rune // │ separator between white keys

	// Transport
	Play  rune // ▶
	Pause rune // ‖
	Stop  rune // ■
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			WhiteKey:  '█',
			BlackKey:  '█',
			Pressed:   '█',
			BlackGap:  ' ',
			KeyBorder: '│',

			Play:  '▶',
			Pause: '‖',
			Stop:  '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0  // ebony
	RoleSurface  = 0.15 // felt
	RoleMuted    = 0.3  // muted
	RoleFG       = 0.45 // dim text
	RoleAccent   = 0.57 // accent
	RoleActive   = 0.72 // hammer
	RolePressed  = 0.86 // pressed key
	RoleWhiteKey = 1.0  // ivory
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Pressed() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RolePressed))
}

func (t *Theme) WhiteKey() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWhiteKey))
}

func (t *Theme) BlackKey() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

// Surface is the felt strip behind the note names
func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
