package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianola/debug"
	"go-pianola/keyboard"
)

// Player is the part of a pianola an input drives
type Player interface {
	Take(items ...any) ([]int, error)
	Free(items ...any) error
}

// Input plays incoming note messages on a keyboard: note on takes the key
// with that MIDI number, note off frees it. Notes outside the keyboard are
// ignored, as is everything when the keyboard is read-only.
type Input struct {
	player   Player
	readOnly bool
	first    uint8 // MIDI number of key 0
	count    int
}

func NewInput(player Player, kb *keyboard.Keyboard) *Input {
	in := &Input{player: player, readOnly: kb.Options().ReadOnly, count: kb.Len()}
	if k := kb.KeyAt(0); k != nil {
		in.first = k.Note
	}
	return in
}

// Index maps a MIDI note number to a key index
func (in *Input) Index(note uint8) (int, bool) {
	i := int(note) - int(in.first)
	if i < 0 || i >= in.count {
		return -1, false
	}
	return i, true
}

// Feed handles one message and reports whether it was a note on the
// keyboard
func (in *Input) Feed(msg gomidi.Message) bool {
	if in.readOnly {
		return false
	}
	ev, ok := Decode(msg)
	if !ok {
		return false
	}
	idx, ok := in.Index(ev.Note)
	if !ok {
		debug.LogEvery(50, "midi", "input: note %d outside keyboard", ev.Note)
		return false
	}
	if ev.Type == NoteOn {
		taken, _ := in.player.Take(idx)
		return len(taken) > 0
	}
	return in.player.Free(idx) == nil
}
