package core

import (
	"strings"
	"unicode/utf8"
)

// Cell is one character position on the screen.
type Cell struct {
	Rune  rune
	Color Color
}

var blank = Cell{Rune: ' ', Color: ColorDefault}

// Screen is a 2D cell buffer. The simulation is drawn into it in character
// coordinates; the terminal layer turns it into styled text.
type Screen struct {
	width  int
	height int
	cells  []Cell
}

// NewScreen creates a blank screen of the given size.
func NewScreen(width, height int) *Screen {
	s := &Screen{}
	s.Resize(width, height)
	return s
}

// Width returns the screen width in characters.
func (s *Screen) Width() int { return s.width }

// Height returns the screen height in characters.
func (s *Screen) Height() int { return s.height }

// Resize reallocates the buffer. Content is discarded; every frame is redrawn.
func (s *Screen) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == s.width && height == s.height && s.cells != nil {
		return
	}
	s.width, s.height = width, height
	s.cells = make([]Cell, width*height)
	s.Clear()
}

// Clear fills the screen with blank cells.
func (s *Screen) Clear() {
	for i := range s.cells {
		s.cells[i] = blank
	}
}

// Set places a colored rune. Out-of-bounds coordinates are ignored.
func (s *Screen) Set(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y*s.width+x] = Cell{Rune: r, Color: c}
}

// GetCell returns the cell at (x, y), or a blank cell when out of bounds.
func (s *Screen) GetCell(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return blank
	}
	return s.cells[y*s.width+x]
}

// Get returns the rune at (x, y).
func (s *Screen) Get(x, y int) rune {
	return s.GetCell(x, y).Rune
}

// DrawText writes text starting at (x, y), clipped to the screen.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r, c)
		i++
	}
}

// DrawTextCentered draws text horizontally centered on row y.
func (s *Screen) DrawTextCentered(y int, text string, c Color) {
	s.DrawText((s.width-utf8.RuneCountInString(text))/2, y, text, c)
}

// FillRect fills a rectangle of cells.
func (s *Screen) FillRect(x, y, w, h int, r rune, c Color) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			s.Set(xx, yy, r, c)
		}
	}
}

// DrawVLine draws a vertical run of length cells.
func (s *Screen) DrawVLine(x, y, length int, r rune, c Color) {
	for i := range length {
		s.Set(x, y+i, r, c)
	}
}

// DrawHLine draws a horizontal run of length cells.
func (s *Screen) DrawHLine(x, y, length int, r rune, c Color) {
	for i := range length {
		s.Set(x+i, y, r, c)
	}
}

// String returns the plain-text contents, rows joined by newlines.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)
	for y := range s.height {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range s.width {
			sb.WriteRune(s.cells[y*s.width+x].Rune)
		}
	}
	return sb.String()
}
