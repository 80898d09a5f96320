package midi

import (
	"sync"
	"time"

	"go-pianola/keyboard"
)

// Recorder collects the note stream a keyboard publishes. Attach it with
// kb.Listen(rec.Record).
type Recorder struct {
	mu     sync.Mutex
	start  time.Time
	now    func() time.Time
	events []Event
	out    chan Event
}

// NewRecorder starts the recording clock. If buffer > 0, events are also
// offered on Events() without blocking; a full channel drops them.
func NewRecorder(buffer int) *Recorder {
	r := &Recorder{now: time.Now}
	r.start = r.now()
	if buffer > 0 {
		r.out = make(chan Event, buffer)
	}
	return r
}

// Record is a keyboard listener
func (r *Recorder) Record(kev keyboard.Event) {
	ev := FromKeyboard(kev)

	r.mu.Lock()
	ev.At = r.now().Sub(r.start)
	r.events = append(r.events, ev)
	r.mu.Unlock()

	if r.out != nil {
		select {
		case r.out <- ev:
		default:
		}
	}
}

// Events streams recorded events; nil when the recorder is unbuffered
func (r *Recorder) Events() <-chan Event {
	return r.out
}

// Recorded returns a copy of everything recorded so far
func (r *Recorder) Recorded() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Notes returns the note numbers of recorded NoteOn events, in order
func (r *Recorder) Notes() []uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var notes []uint8
	for _, ev := range r.events {
		if ev.Type == NoteOn {
			notes = append(notes, ev.Note)
		}
	}
	return notes
}
