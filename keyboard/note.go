package keyboard

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

const (
	Sharp = "♯"
	Flat  = "♭"
)

// pitchClasses lists the spellings of each pitch class, primary first.
// Index is semitones above C.
var pitchClasses = [12][]string{
	{"C", "B♯"},
	{"C♯", "D♭"},
	{"D"},
	{"D♯", "E♭"},
	{"E", "F♭"},
	{"F", "E♯"},
	{"F♯", "G♭"},
	{"G"},
	{"G♯", "A♭"},
	{"A"},
	{"A♯", "B♭"},
	{"B", "C♭"},
}

// IsBlack reports whether a pitch class sits on a black key
func IsBlack(pc int) bool {
	switch pc {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// octaveShift returns how a spelling's octave number differs from the
// key's own octave. B♯ and C♭ cross the C boundary.
func octaveShift(pc int, spelling string) int {
	switch {
	case pc == 0 && spelling == "B♯":
		return -1
	case pc == 11 && spelling == "C♭":
		return 1
	}
	return 0
}

// Normalize canonicalizes a note token for matching: trims it, folds
// full-width input to ASCII, upper-cases the letter and maps ASCII
// accidentals (# and b) to ♯ and ♭.
// "c#4" -> "C♯4", "Bb" -> "B♭".
func Normalize(token string) string {
	token = width.Fold.String(strings.TrimSpace(token))
	if token == "" {
		return ""
	}
	runes := []rune(token)
	var out strings.Builder
	out.WriteRune(unicode.ToUpper(runes[0]))
	for _, r := range runes[1:] {
		switch r {
		case '#':
			out.WriteString(Sharp)
		case 'b':
			out.WriteString(Flat)
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// IsQualified reports whether a token names a specific octave ("C4")
// rather than a pitch class ("C")
func IsQualified(token string) bool {
	token = width.Fold.String(strings.TrimSpace(token))
	if token == "" {
		return false
	}
	last := token[len(token)-1]
	return last >= '0' && last <= '9'
}
