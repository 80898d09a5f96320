package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go-pianola/sequencer"
)

// Group is one scripted group as written in a script file.
//
//	{"frames": ["C4,E4,G4", null, ["D4", 40]], "delay": "250ms", "repeat": 2, "sustain": true}
//
// delay is a Go duration string or a number of milliseconds; repeat is a
// total play count or true for forever. frames null is a single rest.
type Group struct {
	Frames  []any           `json:"frames"`
	Delay   json.RawMessage `json:"delay,omitempty"`
	Repeat  json.RawMessage `json:"repeat,omitempty"`
	Sustain bool            `json:"sustain,omitempty"`
}

// Script is an ordered list of groups
type Script struct {
	Name   string  `json:"name,omitempty"`
	Groups []Group `json:"groups"`
}

// Load reads and parses a script file
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script and checks every group's delay and repeat. Frames
// are left as decoded; Save validates them.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, g := range s.Groups {
		if _, err := g.options(0); err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
	}
	return &s, nil
}

// Apply saves every group onto p in order. Groups without a delay use
// defaultDelay (the player default when that is zero). A group with a
// malformed frame stops the player, which empties the queue; Apply then
// returns an error wrapping sequencer.ErrBadFrame and saves nothing more.
func (s *Script) Apply(p *sequencer.Pianola, defaultDelay time.Duration) error {
	for i, g := range s.Groups {
		opts, err := g.options(defaultDelay)
		if err != nil {
			return fmt.Errorf("group %d: %w", i, err)
		}
		before := p.State().Groups
		p.Save(g.Frames, opts...)
		if p.State().Groups != before+1 {
			return fmt.Errorf("group %d: %w", i, sequencer.ErrBadFrame)
		}
	}
	return nil
}

func (g Group) options(defaultDelay time.Duration) ([]sequencer.Option, error) {
	delay, err := parseDelay(g.Delay)
	if err != nil {
		return nil, err
	}
	if delay == 0 {
		delay = defaultDelay
	}
	repeat, err := parseRepeat(g.Repeat)
	if err != nil {
		return nil, err
	}
	return []sequencer.Option{
		sequencer.WithDelay(delay),
		sequencer.WithRepeat(repeat),
		sequencer.WithSustain(g.Sustain),
	}, nil
}

func parseDelay(raw json.RawMessage) (time.Duration, error) {
	if isNull(raw) {
		return 0, nil
	}
	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("delay %s: want milliseconds or a duration string", raw)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("delay: %w", err)
	}
	return d, nil
}

func parseRepeat(raw json.RawMessage) (sequencer.Repeat, error) {
	if isNull(raw) {
		return sequencer.Once(), nil
	}
	var forever bool
	if err := json.Unmarshal(raw, &forever); err == nil {
		if forever {
			return sequencer.Forever(), nil
		}
		return sequencer.Once(), nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return sequencer.Repeat{}, fmt.Errorf("repeat %s: want a count or true", raw)
	}
	return sequencer.Times(n), nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
