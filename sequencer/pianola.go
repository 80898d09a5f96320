package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-pianola/debug"
	"go-pianola/keyboard"
)

// ErrNoteNotFound is wrapped by every NoteError
var ErrNoteNotFound = errors.New("note not found")

// NoteError reports a selector that matched no key. The note is skipped;
// the rest of the selection still plays.
type NoteError struct {
	Selector keyboard.Selector
}

func (e *NoteError) Error() string {
	return fmt.Sprintf("note %q: not found", e.Selector.String())
}

func (e *NoteError) Unwrap() error {
	return ErrNoteNotFound
}

// Keyboard is what the Pianola plays on
type Keyboard interface {
	keyboard.Layout
	Activate(i int) bool
	Deactivate(i int) bool
	DeactivateAll()
	Active() []int
	Lookup(name string) (int, bool)
	LastActive(name string) (int, bool)
	Locate(key *keyboard.Key) int
	Select(items ...any) ([]keyboard.Selector, error)
	Batch(fn func())
}

// Pianola drives a keyboard from saved frame groups. All methods are safe
// for concurrent use; ticks and caller operations serialize on one lock.
type Pianola struct {
	mu      sync.Mutex
	kb      Keyboard
	scan    *keyboard.Scanner
	clock   Clock
	seq     Sequencer
	timer   *tickHandle // live ticker; nil when not ticking
	playing bool

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// tickHandle identifies one armed ticker so late ticks from a replaced
// ticker can be told apart
type tickHandle struct {
	Ticker
}

// PianolaOption configures a Pianola
type PianolaOption func(*Pianola)

// WithClock replaces the wall clock (tests use a manual one)
func WithClock(c Clock) PianolaOption {
	return func(p *Pianola) {
		p.clock = c
	}
}

// New creates a stopped Pianola with an empty queue
func New(kb Keyboard, opts ...PianolaOption) *Pianola {
	p := &Pianola{
		kb:         kb,
		scan:       keyboard.NewScanner(kb),
		clock:      RealClock,
		UpdateChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Seek returns the index of key on the keyboard, or -1
func (p *Pianola) Seek(key *keyboard.Key) int {
	return p.kb.Locate(key)
}

// Take activates the selected keys and returns their indices in order, so
// the same keys can later be passed to Free. Accepts a *keyboard.Key, one
// slice, or a variadic list of indices and note names.
//
// Plain names ("C") continue the scan from the previous match while
// playing; octave-qualified names ("C4") always resolve to their own key.
// Unresolved notes are skipped and reported as *NoteError.
func (p *Pianola) Take(items ...any) (taken []int, err error) {
	p.do(func() {
		var sels []keyboard.Selector
		if sels, err = p.kb.Select(items...); err != nil {
			return
		}
		taken, err = p.takeLocked(sels)
	})
	return taken, err
}

func (p *Pianola) takeLocked(sels []keyboard.Selector) ([]int, error) {
	var (
		taken []int
		errs  []error
	)
	for _, sel := range sels {
		idx, ok := p.resolve(sel)
		if !ok {
			errs = append(errs, &NoteError{Selector: sel})
			continue
		}
		p.kb.Activate(idx)
		taken = append(taken, idx)
	}

	// Interactive calls never inherit scan state
	if !p.playing {
		p.scan.Reset()
	}
	return taken, errors.Join(errs...)
}

func (p *Pianola) resolve(sel keyboard.Selector) (int, bool) {
	if !sel.IsName() {
		return sel.Index, p.kb.KeyAt(sel.Index) != nil
	}
	if keyboard.IsQualified(sel.Name) {
		return p.kb.Lookup(sel.Name)
	}
	return p.scan.Next(sel.Name)
}

// Free releases keys. With no arguments (or an empty selection) every
// active key is released. Indices release that key; names release the
// highest active key with that label.
func (p *Pianola) Free(items ...any) (err error) {
	p.do(func() {
		err = p.freeLocked(items)
	})
	return err
}

func (p *Pianola) freeLocked(items []any) error {
	sels, err := p.kb.Select(items...)
	if err != nil {
		return err
	}
	if len(sels) == 0 {
		p.kb.DeactivateAll()
		return nil
	}

	var errs []error
	for i := len(sels) - 1; i >= 0; i-- {
		sel := sels[i]
		idx := sel.Index
		if sel.IsName() {
			var ok bool
			if idx, ok = p.kb.LastActive(sel.Name); !ok {
				errs = append(errs, &NoteError{Selector: sel})
				continue
			}
		}
		p.kb.Deactivate(idx)
	}
	return errors.Join(errs...)
}

// Save appends one group to the queue. frames nil means a single rest;
// otherwise each entry is nil (rest), a comma-separated string of notes, or
// a slice of notes. Any other entry discards the whole group and stops the
// player.
func (p *Pianola) Save(frames []any, opts ...Option) *Pianola {
	p.do(func() {
		p.saveLocked(frames, opts)
	})
	return p
}

func (p *Pianola) saveLocked(frames []any, opts []Option) {
	if frames == nil {
		frames = []any{nil}
	}
	g := newGroup(opts...)
	for i, raw := range frames {
		f, err := parseFrame(raw)
		if err != nil {
			debug.Log("seq", "save: frame %d: %v, stopping", i, err)
			p.stopLocked()
			return
		}
		g.Frames = append(g.Frames, f)
	}
	p.seq.Append(g)
	debug.Log("seq", "save: group %d frames=%d delay=%s repeat=%s sustain=%v",
		p.seq.Len()-1, len(g.Frames), g.Delay, g.Repeat, g.Sustain)
}

// Play starts or resumes playback: the next frame plays at once, then one
// per tick. No-op while playing or with nothing queued.
func (p *Pianola) Play() *Pianola {
	p.do(p.playLocked)
	return p
}

func (p *Pianola) playLocked() {
	if p.playing || p.seq.Empty() {
		return
	}
	p.playing = true
	p.advanceLocked()

	// The first step may already have switched groups (and armed that
	// group's ticker) or run off the end and stopped.
	if p.playing && p.timer == nil {
		if first := p.seq.First(); first != nil {
			p.arm(first.Delay)
		}
	}
}

// Pause stops ticking and releases every key. The queue and cursors are
// kept so Play resumes where playback left off.
func (p *Pianola) Pause() *Pianola {
	p.do(p.pauseLocked)
	return p
}

func (p *Pianola) pauseLocked() {
	if !p.playing {
		return
	}
	p.cancel()
	p.playing = false
	p.kb.DeactivateAll()
	p.scan.Reset()
	debug.Log("seq", "pause at group %d", p.seq.Group())
}

// Stop pauses, releases every key and discards the queue
func (p *Pianola) Stop() *Pianola {
	p.do(p.stopLocked)
	return p
}

func (p *Pianola) stopLocked() {
	p.pauseLocked()
	p.kb.DeactivateAll()
	p.scan.Reset()
	p.seq.Reset()
	debug.Log("seq", "stop")
}

// Step runs one transition by hand, whether or not playing
func (p *Pianola) Step() *Pianola {
	p.do(p.advanceLocked)
	return p
}

// advanceLocked is the single transition every tick runs. A tick either
// plays the next frame, or (when the group is spent) repeats or switches
// groups without playing anything.
func (p *Pianola) advanceLocked() {
	g := p.seq.Current()
	if g == nil {
		p.stopLocked()
		return
	}

	if !g.Sustain {
		p.kb.DeactivateAll()
	}

	if g.exhausted() || g.restOnly() {
		p.scan.Reset()

		if g.Repeat.Pending() {
			g.rewind()
			debug.Log("seq", "group %d repeats (%s left)", p.seq.Group(), g.Repeat)
			return
		}

		p.cancel()
		next := p.seq.Advance()
		if next == nil {
			p.stopLocked()
			return
		}
		debug.Log("seq", "switch to group %d delay=%s", p.seq.Group(), next.Delay)
		if p.playing {
			p.arm(next.Delay)
		}
		return
	}

	idx := g.Frame()
	f := g.next()
	debug.LogEvery(16, "tick", "group %d frame %d", p.seq.Group(), idx)
	if f.IsRest() {
		return
	}
	if _, err := p.takeLocked(f.Notes); err != nil {
		debug.Log("seq", "group %d frame %d: %v", p.seq.Group(), idx, err)
	}
}

// arm replaces the live ticker with one firing every d
func (p *Pianola) arm(d time.Duration) {
	p.cancel()
	h := &tickHandle{}
	h.Ticker = p.clock.Every(d, func() { p.tick(h) })
	p.timer = h
}

func (p *Pianola) cancel() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Pianola) tick(h *tickHandle) {
	p.do(func() {
		// A tick can race the Stop of its own ticker
		if p.timer == h {
			p.advanceLocked()
		}
	})
}

// do runs fn under the lock. Key changes it makes reach keyboard listeners
// only after the lock is released, so listeners may call back in.
func (p *Pianola) do(fn func()) {
	p.kb.Batch(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		defer p.notify()
		fn()
	})
}

// notify wakes the TUI without blocking
func (p *Pianola) notify() {
	select {
	case p.UpdateChan <- struct{}{}:
	default:
	}
}

// State is a snapshot of the player for display and tests
type State struct {
	Playing bool
	Group   int // cursor; equals Groups when done
	Groups  int
	Frame   int // next frame of the current group
	Frames  int
	Delay   time.Duration
	Repeat  Repeat
	Sustain bool
	Scan    int
	Active  []int
}

// State returns a snapshot of the player
func (p *Pianola) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		Playing: p.playing,
		Group:   p.seq.Group(),
		Groups:  p.seq.Len(),
		Scan:    p.scan.Pos(),
		Active:  p.kb.Active(),
	}
	if g := p.seq.Current(); g != nil {
		st.Frame = g.Frame()
		st.Frames = len(g.Frames)
		st.Delay = g.Delay
		st.Repeat = g.Repeat
		st.Sustain = g.Sustain
	}
	return st
}

// Duration estimates the remaining scheduled time; ok is false when a
// group repeats forever
func (p *Pianola) Duration() (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq.Duration()
}

// Dump writes the current state to the debug log
func (p *Pianola) Dump(label string) {
	debug.Dump("seq", label, p.State())
}
