package sequencer

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go-pianola/keyboard"
)

// DefaultDelay is the step interval of a group saved without WithDelay
const DefaultDelay = 500 * time.Millisecond

// ErrBadFrame marks a frame entry Save cannot schedule
var ErrBadFrame = errors.New("bad frame")

// Frame is one step of a group: the notes to take, or a rest
type Frame struct {
	Notes []keyboard.Selector
	rest  bool
}

// Rest returns a silent frame
func Rest() Frame {
	return Frame{rest: true}
}

// Chord returns a frame taking the given selectors together
func Chord(notes ...keyboard.Selector) Frame {
	return Frame{Notes: append([]keyboard.Selector{}, notes...)}
}

// IsRest reports whether the frame is silent
func (f Frame) IsRest() bool {
	return f.rest
}

func (f Frame) String() string {
	if f.rest {
		return "rest"
	}
	names := make([]string, len(f.Notes))
	for i, n := range f.Notes {
		names[i] = n.String()
	}
	return strings.Join(names, ",")
}

// FrameGroup is one scripted segment: its frames play one per tick at
// Delay, the whole group plays again while Repeat is pending, and with
// Sustain notes pile up instead of being released before each frame.
type FrameGroup struct {
	Frames  []Frame
	Delay   time.Duration
	Repeat  Repeat
	Sustain bool

	frame int // next frame to play; len(Frames) when exhausted
}

// Option configures a group at Save time
type Option func(*FrameGroup)

// WithDelay sets the step interval. Non-positive values keep the default.
func WithDelay(d time.Duration) Option {
	return func(g *FrameGroup) {
		if d > 0 {
			g.Delay = d
		}
	}
}

// WithRepeat sets how many times the group plays
func WithRepeat(r Repeat) Option {
	return func(g *FrameGroup) {
		g.Repeat = r
	}
}

// WithSustain keeps notes held across the group's frames
func WithSustain(on bool) Option {
	return func(g *FrameGroup) {
		g.Sustain = on
	}
}

func newGroup(opts ...Option) *FrameGroup {
	g := &FrameGroup{
		Delay:  DefaultDelay,
		Repeat: Once(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Frame returns the index of the next frame to play
func (g *FrameGroup) Frame() int {
	return g.frame
}

// exhausted reports whether every frame of the current pass has played
func (g *FrameGroup) exhausted() bool {
	return g.frame >= len(g.Frames)
}

// restOnly reports whether the group is a lone rest, which only spends
// its bookkeeping tick
func (g *FrameGroup) restOnly() bool {
	return len(g.Frames) == 1 && g.Frames[0].IsRest()
}

// next returns the frame at the cursor and moves past it
func (g *FrameGroup) next() Frame {
	f := g.Frames[g.frame]
	g.frame++
	return f
}

// rewind starts another pass
func (g *FrameGroup) rewind() {
	g.frame = 0
	g.Repeat.consume()
}

// ticksPerPass is the number of ticks one pass takes, bookkeeping included
func (g *FrameGroup) ticksPerPass() int {
	if g.restOnly() {
		return 1
	}
	return len(g.Frames) + 1
}

// parseFrame accepts nil (rest), a comma-separated string, or a slice of
// tokens where each token is a note name or an integral index.
func parseFrame(v any) (Frame, error) {
	switch f := v.(type) {
	case nil:
		return Rest(), nil
	case Frame:
		return f, nil
	case string:
		return Frame{Notes: splitNames(f)}, nil
	case []string:
		notes := make([]keyboard.Selector, 0, len(f))
		for _, name := range f {
			if name = strings.TrimSpace(name); name != "" {
				notes = append(notes, keyboard.Named(name))
			}
		}
		return Frame{Notes: notes}, nil
	case []int:
		notes := make([]keyboard.Selector, len(f))
		for i, idx := range f {
			notes[i] = keyboard.At(idx)
		}
		return Frame{Notes: notes}, nil
	case []keyboard.Selector:
		return Chord(f...), nil
	case []any:
		notes := make([]keyboard.Selector, 0, len(f))
		for _, tok := range f {
			sel, err := parseToken(tok)
			if err != nil {
				return Frame{}, err
			}
			if sel.IsName() && strings.TrimSpace(sel.Name) == "" {
				continue
			}
			notes = append(notes, sel)
		}
		return Frame{Notes: notes}, nil
	}
	return Frame{}, fmt.Errorf("%w: %T", ErrBadFrame, v)
}

func parseToken(tok any) (keyboard.Selector, error) {
	switch t := tok.(type) {
	case string:
		return keyboard.Named(strings.TrimSpace(t)), nil
	case int:
		return keyboard.At(t), nil
	case float64:
		if t != math.Trunc(t) {
			return keyboard.Selector{}, fmt.Errorf("%w: non-integral index %v", ErrBadFrame, t)
		}
		return keyboard.At(int(t)), nil
	case keyboard.Selector:
		return t, nil
	}
	return keyboard.Selector{}, fmt.Errorf("%w: token %T", ErrBadFrame, tok)
}

func splitNames(s string) []keyboard.Selector {
	parts := strings.Split(s, ",")
	notes := make([]keyboard.Selector, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			notes = append(notes, keyboard.Named(p))
		}
	}
	return notes
}
