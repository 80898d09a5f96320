package sequencer

import "time"

// Sequencer is the queue of saved groups and the cursor into it
type Sequencer struct {
	groups []*FrameGroup // nil until the first Save
	group  int           // current group; len(groups) when done
}

// Append queues a group after the existing ones
func (s *Sequencer) Append(g *FrameGroup) {
	s.groups = append(s.groups, g)
}

// Current returns the group under the cursor, or nil when done
func (s *Sequencer) Current() *FrameGroup {
	if s.group >= len(s.groups) {
		return nil
	}
	return s.groups[s.group]
}

// Advance moves the cursor to the next group and returns it, or nil when
// the queue is exhausted
func (s *Sequencer) Advance() *FrameGroup {
	if s.group < len(s.groups) {
		s.group++
	}
	return s.Current()
}

// First returns the first queued group, or nil
func (s *Sequencer) First() *FrameGroup {
	if len(s.groups) == 0 {
		return nil
	}
	return s.groups[0]
}

// Empty reports whether nothing is queued
func (s *Sequencer) Empty() bool {
	return len(s.groups) == 0
}

// Len returns the number of queued groups
func (s *Sequencer) Len() int {
	return len(s.groups)
}

// Group returns the cursor position
func (s *Sequencer) Group() int {
	return s.group
}

// Reset discards every group and rewinds the cursor
func (s *Sequencer) Reset() {
	s.groups = nil
	s.group = 0
}

// Duration estimates how long the rest of the queue takes to play from the
// cursor, counting each group's bookkeeping tick. ok is false when a group
// repeats forever.
func (s *Sequencer) Duration() (d time.Duration, ok bool) {
	for i := s.group; i < len(s.groups); i++ {
		g := s.groups[i]
		passes := g.Repeat.Passes()
		if passes < 0 {
			return 0, false
		}
		ticks := passes * g.ticksPerPass()
		// the current pass is partly played
		if i == s.group && !g.restOnly() {
			ticks -= g.frame
		}
		d += time.Duration(ticks) * g.Delay
	}
	return d, true
}
