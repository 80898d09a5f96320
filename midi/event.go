package midi

import (
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianola/keyboard"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is one note message, stamped with its offset from the start of a
// recording
type Event struct {
	At       time.Duration
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8
	Note     uint8
	Velocity uint8
}

// Decode reads a note message. ok is false for anything that is not a note
// on or note off. A note on with velocity 0 decodes as NoteOff.
func Decode(msg gomidi.Message) (ev Event, ok bool) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		return Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity}, true
	case msg.GetNoteOn(&channel, &note, &velocity):
		return Event{Type: NoteOff, Channel: channel, Note: note}, true
	case msg.GetNoteOff(&channel, &note, &velocity):
		return Event{Type: NoteOff, Channel: channel, Note: note, Velocity: velocity}, true
	}
	return Event{}, false
}

// Message encodes the event back to a wire message
func (e Event) Message() gomidi.Message {
	if e.Type == NoteOn {
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOff(e.Channel, e.Note)
}

func (e Event) String() string {
	kind := "off"
	if e.Type == NoteOn {
		kind = "on "
	}
	return fmt.Sprintf("%8s  ch%-2d %s %3d vel %3d", e.At.Truncate(time.Millisecond), e.Channel, kind, e.Note, e.Velocity)
}

// FromKeyboard converts a keyboard state change
func FromKeyboard(kev keyboard.Event) Event {
	ev, ok := Decode(kev.Message)
	if !ok {
		ev = Event{Type: NoteOff, Note: kev.Key.Note}
		if kev.Active {
			ev = Event{Type: NoteOn, Note: kev.Key.Note, Velocity: keyboard.Velocity}
		}
	}
	return ev
}
