package midi

import (
	"reflect"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-pianola/keyboard"
	"go-pianola/sequencer"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  gomidi.Message
		want Event
		ok   bool
	}{
		{"note on", gomidi.NoteOn(2, 60, 90), Event{Type: NoteOn, Channel: 2, Note: 60, Velocity: 90}, true},
		{"note off", gomidi.NoteOff(1, 62), Event{Type: NoteOff, Channel: 1, Note: 62}, true},
		{"control change", gomidi.ControlChange(0, 7, 100), Event{}, false},
	}
	for _, tt := range tests {
		got, ok := Decode(tt.msg)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s: Decode = %+v, %v, want %+v, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEventMessageRoundTrip(t *testing.T) {
	ev := Event{Type: NoteOn, Channel: 3, Note: 64, Velocity: 70}
	got, ok := Decode(ev.Message())
	if !ok || got != ev {
		t.Fatalf("round trip = %+v, want %+v", got, ev)
	}
}

func TestRecorderFollowsPlayback(t *testing.T) {
	kb := keyboard.New(keyboard.DefaultOptions())
	rec := NewRecorder(8)
	kb.Listen(rec.Record)

	p := sequencer.New(kb)
	p.Save([]any{"C4,E4", "G4"})
	p.Step().Step()

	if got := rec.Notes(); !reflect.DeepEqual(got, []uint8{60, 64, 67}) {
		t.Fatalf("notes = %v, want C4 E4 G4", got)
	}
	evs := rec.Recorded()
	if len(evs) != 5 {
		t.Fatalf("recorded %d events, want 3 on and 2 off", len(evs))
	}
	// second step releases the chord highest first
	if evs[2].Type != NoteOff || evs[2].Note != 64 || evs[3].Note != 60 {
		t.Fatalf("release order = %v, %v", evs[2], evs[3])
	}
	if first := <-rec.Events(); first.Note != 60 || first.Type != NoteOn {
		t.Fatalf("streamed %v, want C4 on", first)
	}
}

func TestInputPlaysKeyboard(t *testing.T) {
	kb := keyboard.New(keyboard.Options{Octaves: 9})
	p := sequencer.New(kb)
	in := NewInput(p, kb)

	if i, ok := in.Index(21); !ok || i != 0 {
		t.Fatalf("Index(21) = %d, %v, want A0", i, ok)
	}
	if !in.Feed(gomidi.NoteOn(0, 60, 100)) || !kb.IsActive(39) {
		t.Fatalf("note on should take C4")
	}
	if in.Feed(gomidi.NoteOn(0, 12, 100)) {
		t.Fatalf("note below A0 should be ignored")
	}
	if !in.Feed(gomidi.NoteOff(0, 60)) || kb.IsActive(39) {
		t.Fatalf("note off should free C4")
	}
	if in.Feed(gomidi.ControlChange(0, 64, 127)) {
		t.Fatalf("control change should be ignored")
	}

	ro := keyboard.New(keyboard.DefaultOptions())
	if NewInput(sequencer.New(ro), ro).Feed(gomidi.NoteOn(0, 60, 100)) {
		t.Fatalf("read-only keyboard should ignore input")
	}
}
