package keyboard

import (
	"strconv"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

const (
	MinOctaves = 1
	MaxOctaves = 9

	// HomeOctave is the octave the keyboard is built around (middle C)
	HomeOctave = 4

	// Velocity used for the NoteOn message published with each activation
	Velocity uint8 = 100
)

// buildOrder is the order octaves are added as the keyboard grows:
// home octave, then alternating above and below it.
var buildOrder = []int{4, 5, 3, 6, 2, 7, 1, 8, 0}

// Options configure keyboard construction
type Options struct {
	Octaves  int  `json:"octaves"`
	Large    bool `json:"large"`
	Signs    bool `json:"signs"`
	ReadOnly bool `json:"readonly"`
}

// DefaultOptions returns a full 88-key read-only keyboard
func DefaultOptions() Options {
	return Options{
		Octaves:  MaxOctaves,
		ReadOnly: true,
	}
}

// ClampOctaves forces an octave count into [MinOctaves, MaxOctaves]
func ClampOctaves(n int) int {
	if n < MinOctaves {
		return MinOctaves
	}
	if n > MaxOctaves {
		return MaxOctaves
	}
	return n
}

// Key is one playable key
type Key struct {
	Index  int
	Note   uint8 // MIDI note number, C4 = 60
	Octave int
	Class  int      // pitch class, semitones above C
	Names  []string // pitch-class spellings, primary first
	Black  bool
}

// Name returns the primary octave-qualified name, e.g. "C♯4"
func (k *Key) Name() string {
	return k.Names[0] + strconv.Itoa(k.Octave)
}

// Labels returns every label the key answers to: each spelling bare and
// octave-qualified
func (k *Key) Labels() []string {
	labels := make([]string, 0, len(k.Names)*2)
	labels = append(labels, k.Names...)
	for _, n := range k.Names {
		labels = append(labels, n+strconv.Itoa(k.Octave+octaveShift(k.Class, n)))
	}
	return labels
}

// Matches reports whether token names this key. The token is matched whole
// after normalization.
func (k *Key) Matches(token string) bool {
	token = Normalize(token)
	if token == "" {
		return false
	}
	for _, l := range k.Labels() {
		if l == token {
			return true
		}
	}
	return false
}

// Event is published whenever a key changes state
type Event struct {
	Index   int
	Key     *Key
	Active  bool
	Message gomidi.Message // equivalent NoteOn / NoteOff on channel 0
}

// Keyboard owns the keys and their active state
type Keyboard struct {
	opts   Options
	keys   []*Key
	offset int

	mu        sync.RWMutex
	active    []bool
	listeners []func(Event)

	emitMu  sync.Mutex
	batches int     // open Batch calls
	pending []Event // held until the last batch closes
}

// New builds a keyboard. Octaves are clamped to [1,9]; one octave gives
// C4..C5, nine give the full A0..C8 piano.
func New(opts Options) *Keyboard {
	opts.Octaves = ClampOctaves(opts.Octaves)
	kb := &Keyboard{opts: opts}

	included := make(map[int]bool)
	for _, oct := range buildOrder[:opts.Octaves] {
		included[oct] = true
	}
	// A single octave still gets the closing C above it
	if opts.Octaves == 1 {
		included[HomeOctave+1] = true
	}

	for oct := 0; oct <= 8; oct++ {
		if !included[oct] {
			continue
		}
		classes := octaveClasses(oct, opts.Octaves)
		if len(classes) == 12 && oct < HomeOctave {
			kb.offset += len(classes)
		}
		for _, pc := range classes {
			kb.keys = append(kb.keys, &Key{
				Index:  len(kb.keys),
				Note:   uint8(12*(oct+1) + pc),
				Octave: oct,
				Class:  pc,
				Names:  pitchClasses[pc],
				Black:  IsBlack(pc),
			})
		}
	}
	kb.active = make([]bool, len(kb.keys))
	return kb
}

// octaveClasses returns the pitch classes present in an octave. The top
// octave is a lone C and octave 0 only holds A, A♯ and B.
func octaveClasses(oct, octaves int) []int {
	switch {
	case oct == 8, octaves == 1 && oct == HomeOctave+1:
		return []int{0}
	case oct == 0:
		return []int{9, 10, 11}
	}
	classes := make([]int, 12)
	for i := range classes {
		classes[i] = i
	}
	return classes
}

// Options returns the options the keyboard was built with (octaves clamped)
func (kb *Keyboard) Options() Options {
	return kb.opts
}

// Len returns the number of keys
func (kb *Keyboard) Len() int {
	return len(kb.keys)
}

// Offset returns the number of keys in the full octaves below the home
// octave. Plain note names are searched from here upward.
func (kb *Keyboard) Offset() int {
	return kb.offset
}

// KeyAt returns the key at index i, or nil when out of range
func (kb *Keyboard) KeyAt(i int) *Key {
	if i < 0 || i >= len(kb.keys) {
		return nil
	}
	return kb.keys[i]
}

// Keys returns all keys in ascending pitch order
func (kb *Keyboard) Keys() []*Key {
	return kb.keys
}

// Listen registers fn to receive every key state change. Listeners run on
// the goroutine that changed the key, after the keyboard lock is released.
// Changes made inside Batch are delivered when the outermost Batch
// returns, so a listener may call back into whatever holds its own lock
// around the batch (a Pianola does).
func (kb *Keyboard) Listen(fn func(Event)) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.listeners = append(kb.listeners, fn)
}

// Batch runs fn and holds back listener calls for changes it makes until
// every concurrent Batch has returned. Events keep their order.
func (kb *Keyboard) Batch(fn func()) {
	kb.emitMu.Lock()
	kb.batches++
	kb.emitMu.Unlock()

	defer func() {
		kb.emitMu.Lock()
		kb.batches--
		var evs []Event
		if kb.batches == 0 {
			evs, kb.pending = kb.pending, nil
		}
		kb.emitMu.Unlock()
		for _, ev := range evs {
			kb.dispatch(ev)
		}
	}()
	fn()
}

func (kb *Keyboard) publish(ev Event) {
	kb.emitMu.Lock()
	if kb.batches > 0 {
		kb.pending = append(kb.pending, ev)
		kb.emitMu.Unlock()
		return
	}
	kb.emitMu.Unlock()
	kb.dispatch(ev)
}

func (kb *Keyboard) dispatch(ev Event) {
	kb.mu.RLock()
	listeners := kb.listeners
	kb.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// Activate marks key i active. Returns false when i is out of range or the
// key was already active.
func (kb *Keyboard) Activate(i int) bool {
	return kb.set(i, true)
}

// Deactivate marks key i inactive. Returns false when i is out of range or
// the key was not active.
func (kb *Keyboard) Deactivate(i int) bool {
	return kb.set(i, false)
}

// DeactivateAll releases every active key, highest first
func (kb *Keyboard) DeactivateAll() {
	active := kb.Active()
	for j := len(active) - 1; j >= 0; j-- {
		kb.Deactivate(active[j])
	}
}

func (kb *Keyboard) set(i int, on bool) bool {
	if i < 0 || i >= len(kb.keys) {
		return false
	}

	kb.mu.Lock()
	if kb.active[i] == on {
		kb.mu.Unlock()
		return false
	}
	kb.active[i] = on
	kb.mu.Unlock()

	key := kb.keys[i]
	ev := Event{Index: i, Key: key, Active: on}
	if on {
		ev.Message = gomidi.NoteOn(0, key.Note, Velocity)
	} else {
		ev.Message = gomidi.NoteOff(0, key.Note)
	}
	kb.publish(ev)
	return true
}

// IsActive reports whether key i is active
func (kb *Keyboard) IsActive(i int) bool {
	if i < 0 || i >= len(kb.keys) {
		return false
	}
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.active[i]
}

// Active returns the indices of all active keys, ascending
func (kb *Keyboard) Active() []int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	var out []int
	for i, on := range kb.active {
		if on {
			out = append(out, i)
		}
	}
	return out
}

// Lookup returns the lowest key carrying the given label
func (kb *Keyboard) Lookup(name string) (int, bool) {
	for _, k := range kb.keys {
		if k.Matches(name) {
			return k.Index, true
		}
	}
	return -1, false
}

// LastActive returns the highest active key carrying the given label. When
// a note name appears in several octaves the most recent activation is
// assumed to be the one meant.
func (kb *Keyboard) LastActive(name string) (int, bool) {
	for i := len(kb.keys) - 1; i >= 0; i-- {
		if kb.IsActive(i) && kb.keys[i].Matches(name) {
			return i, true
		}
	}
	return -1, false
}
