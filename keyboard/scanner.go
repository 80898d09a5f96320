package keyboard

// Layout is the read-only view a Scanner walks
type Layout interface {
	Len() int
	Offset() int
	KeyAt(i int) *Key
}

// Scanner resolves plain note names by walking the keyboard upward from the
// layout offset. The position is kept between calls, so a second "C"
// resolves to the C above the first one until Reset is called.
type Scanner struct {
	layout Layout
	pos    int // last matched local position, -1 when fresh
}

func NewScanner(layout Layout) *Scanner {
	return &Scanner{layout: layout, pos: -1}
}

// Reset rewinds the scanner so the next search starts from the offset
func (s *Scanner) Reset() {
	s.pos = -1
}

// Pos returns the last matched local position (-1 when fresh)
func (s *Scanner) Pos() int {
	return s.pos
}

// Next finds the first key past the current position matching name and
// returns its absolute index. The position only moves on a match.
func (s *Scanner) Next(name string) (int, bool) {
	offset := s.layout.Offset()
	for local := s.pos + 1; offset+local < s.layout.Len(); local++ {
		if s.layout.KeyAt(offset + local).Matches(name) {
			s.pos = local
			return offset + local, true
		}
	}
	return -1, false
}
