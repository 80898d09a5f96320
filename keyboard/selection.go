package keyboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadSelector is returned by Select for items that are neither a key,
// an index nor a note name
var ErrBadSelector = errors.New("bad key selector")

// Selector picks one key, either by linear index or by note name
type Selector struct {
	Index int
	Name  string
}

// At selects a key by index
func At(i int) Selector {
	return Selector{Index: i}
}

// Named selects a key by note name
func Named(name string) Selector {
	return Selector{Index: -1, Name: name}
}

// IsName reports whether the selector is a note name
func (s Selector) IsName() bool {
	return s.Name != ""
}

func (s Selector) String() string {
	if s.IsName() {
		return s.Name
	}
	return strconv.Itoa(s.Index)
}

// Locate returns the index of the given key, or -1 if it does not belong
// to this keyboard
func (kb *Keyboard) Locate(key *Key) int {
	for i, k := range kb.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Select normalizes the accepted call shapes into a flat selector list,
// keeping caller order:
//
//	kb.Select(key)                   // one *Key
//	kb.Select([]any{"C", 40, "E4"})  // one slice ([]any, []int, []string, []Selector)
//	kb.Select("C", 40, "E4")         // variadic ints, strings, Selectors, *Keys
//
// Names are not resolved here.
func (kb *Keyboard) Select(items ...any) ([]Selector, error) {
	if len(items) == 1 {
		switch v := items[0].(type) {
		case []any:
			items = v
		case []int:
			out := make([]Selector, len(v))
			for i, idx := range v {
				out[i] = At(idx)
			}
			return out, nil
		case []string:
			out := make([]Selector, len(v))
			for i, name := range v {
				sel, err := kb.selector(name)
				if err != nil {
					return nil, err
				}
				out[i] = sel
			}
			return out, nil
		case []Selector:
			return append([]Selector(nil), v...), nil
		}
	}

	out := make([]Selector, 0, len(items))
	for _, item := range items {
		sel, err := kb.selector(item)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	return out, nil
}

func (kb *Keyboard) selector(item any) (Selector, error) {
	switch v := item.(type) {
	case Selector:
		return v, nil
	case *Key:
		return At(kb.Locate(v)), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return Selector{}, fmt.Errorf("%w: empty note name", ErrBadSelector)
		}
		return Named(v), nil
	case int:
		return At(v), nil
	case float64:
		// JSON numbers
		if v != math.Trunc(v) {
			return Selector{}, fmt.Errorf("%w: non-integral index %v", ErrBadSelector, v)
		}
		return At(int(v)), nil
	}
	return Selector{}, fmt.Errorf("%w: %T", ErrBadSelector, item)
}
