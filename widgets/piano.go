package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-pianola/keyboard"
	"go-pianola/theme"
)

// Board is the read side of a keyboard the renderer needs
type Board interface {
	Len() int
	KeyAt(i int) *keyboard.Key
	IsActive(i int) bool
}

// Piano lays a keyboard out as a grid of terminal cells. The layout is
// fixed at construction; active state is read on every Render.
type Piano struct {
	board  Board
	theme  *theme.Theme
	signs  bool
	whiteW int
	blackH int
	grid   [][]int // key index per cell, black rows first
	whites []int   // white key indices, left to right
}

// NewPiano builds the layout for board. Large doubles the key size; signs
// adds a row of note names under the white keys.
func NewPiano(board Board, th *theme.Theme, large, signs bool) *Piano {
	p := &Piano{board: board, theme: th, signs: signs, whiteW: 3, blackH: 2}
	blackW, whiteH := 2, 1
	if large {
		p.whiteW, p.blackH = 5, 3
		blackW, whiteH = 3, 2
	}

	for i := 0; i < board.Len(); i++ {
		if !board.KeyAt(i).Black {
			p.whites = append(p.whites, i)
		}
	}
	width := len(p.whites) * p.whiteW

	base := make([]int, width)
	for col := range base {
		base[col] = p.whites[col/p.whiteW]
	}
	top := append([]int(nil), base...)
	seen := 0
	for i := 0; i < board.Len(); i++ {
		if !board.KeyAt(i).Black {
			seen++
			continue
		}
		start := seen*p.whiteW - blackW/2
		for col := max(start, 0); col < start+blackW && col < width; col++ {
			top[col] = i
		}
	}

	for row := 0; row < p.blackH; row++ {
		p.grid = append(p.grid, top)
	}
	for row := 0; row < whiteH; row++ {
		p.grid = append(p.grid, base)
	}
	return p
}

// Width in cells
func (p *Piano) Width() int {
	return len(p.whites) * p.whiteW
}

// Height in rows, including the signs row
func (p *Piano) Height() int {
	if p.signs {
		return len(p.grid) + 1
	}
	return len(p.grid)
}

// HitTest returns the key under cell (x, y) relative to the top-left of
// the rendered piano, or -1.
func (p *Piano) HitTest(x, y int) int {
	if x < 0 || y < 0 || x >= p.Width() || y >= p.Height() {
		return -1
	}
	if y >= len(p.grid) {
		return p.whites[x/p.whiteW]
	}
	return p.grid[y][x]
}

type cellKind int

const (
	cellWhite cellKind = iota
	cellWhiteEdge
	cellWhitePressed
	cellWhitePressedEdge
	cellBlack
	cellBlackPressed
)

func (p *Piano) kind(col, key int, active []bool) cellKind {
	if p.board.KeyAt(key).Black {
		if active[key] {
			return cellBlackPressed
		}
		return cellBlack
	}
	edge := col%p.whiteW == p.whiteW-1
	switch {
	case active[key] && edge:
		return cellWhitePressedEdge
	case active[key]:
		return cellWhitePressed
	case edge:
		return cellWhiteEdge
	}
	return cellWhite
}

func (p *Piano) paint(k cellKind, n int) string {
	sym := p.theme.Symbols
	var style lipgloss.Style
	var r rune
	switch k {
	case cellWhite:
		style, r = lipgloss.NewStyle().Foreground(p.theme.WhiteKey()), sym.WhiteKey
	case cellWhiteEdge:
		style, r = lipgloss.NewStyle().Foreground(p.theme.BlackKey()).Background(p.theme.WhiteKey()), sym.KeyBorder
	case cellWhitePressed:
		style, r = lipgloss.NewStyle().Foreground(p.theme.Pressed()), sym.Pressed
	case cellWhitePressedEdge:
		style, r = lipgloss.NewStyle().Foreground(p.theme.BlackKey()).Background(p.theme.Pressed()), sym.KeyBorder
	case cellBlack:
		style, r = lipgloss.NewStyle().Foreground(p.theme.BlackKey()), sym.BlackKey
	case cellBlackPressed:
		style, r = lipgloss.NewStyle().Foreground(p.theme.Active()), sym.Pressed
	}
	return style.Render(strings.Repeat(string(r), n))
}

// Render draws the keyboard with active keys highlighted
func (p *Piano) Render() string {
	active := make([]bool, p.board.Len())
	for i := range active {
		active[i] = p.board.IsActive(i)
	}

	lines := make([]string, 0, p.Height())
	for _, row := range p.grid {
		var line strings.Builder
		run, runKind := 0, cellWhite
		for col, key := range row {
			k := p.kind(col, key, active)
			if run > 0 && k != runKind {
				line.WriteString(p.paint(runKind, run))
				run = 0
			}
			runKind = k
			run++
		}
		if run > 0 {
			line.WriteString(p.paint(runKind, run))
		}
		lines = append(lines, line.String())
	}

	if p.signs {
		cell := lipgloss.NewStyle().Width(p.whiteW).MaxWidth(p.whiteW).Align(lipgloss.Center).
			Background(p.theme.Surface())
		var line strings.Builder
		for _, i := range p.whites {
			style := cell.Foreground(p.theme.FG())
			if active[i] {
				style = cell.Foreground(p.theme.Accent())
			}
			line.WriteString(style.Render(p.board.KeyAt(i).Name()))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}
