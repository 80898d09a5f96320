package sequencer

import "strconv"

// RepeatKind tags the Repeat variant
type RepeatKind int

const (
	RepeatOnce RepeatKind = iota
	RepeatCount
	RepeatForever
)

// Repeat says how many more times a group plays after the current pass.
// Count holds the number of extra passes left and only means something
// when Kind is RepeatCount.
type Repeat struct {
	Kind  RepeatKind
	Count int
}

// Once plays a group a single time
func Once() Repeat {
	return Repeat{Kind: RepeatOnce}
}

// Times plays a group n times in total. n <= 1 is the same as Once.
func Times(n int) Repeat {
	if n <= 1 {
		return Once()
	}
	return Repeat{Kind: RepeatCount, Count: n - 1}
}

// Forever repeats a group until the player is paused or stopped
func Forever() Repeat {
	return Repeat{Kind: RepeatForever}
}

// Pending reports whether another pass is due
func (r Repeat) Pending() bool {
	switch r.Kind {
	case RepeatForever:
		return true
	case RepeatCount:
		return r.Count > 0
	}
	return false
}

// consume uses up one pass
func (r *Repeat) consume() {
	if r.Kind == RepeatCount && r.Count > 0 {
		r.Count--
	}
}

// Passes returns the number of passes left including the current one, or
// -1 for Forever
func (r Repeat) Passes() int {
	switch r.Kind {
	case RepeatForever:
		return -1
	case RepeatCount:
		return r.Count + 1
	}
	return 1
}

func (r Repeat) String() string {
	switch r.Kind {
	case RepeatForever:
		return "forever"
	case RepeatCount:
		return "+" + strconv.Itoa(r.Count)
	}
	return "once"
}
