package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(80, 24)

	if s.Width() != 80 {
		t.Errorf("Width() = %d, expected 80", s.Width())
	}
	if s.Height() != 24 {
		t.Errorf("Height() = %d, expected 24", s.Height())
	}
	for y := range s.Height() {
		for x := range s.Width() {
			if s.Get(x, y) != ' ' {
				t.Fatalf("new screen should be blank, got %q at (%d, %d)", s.Get(x, y), x, y)
			}
		}
	}
}

func TestScreenSetGetCell(t *testing.T) {
	s := NewScreen(10, 10)

	s.Set(5, 5, 'X', ColorCyan)
	cell := s.GetCell(5, 5)
	if cell.Rune != 'X' || cell.Color != ColorCyan {
		t.Errorf("GetCell(5, 5) = %+v, expected X/cyan", cell)
	}

	// Out of bounds writes are ignored
	s.Set(-1, 0, 'A', ColorRed)
	s.Set(100, 0, 'A', ColorRed)
	s.Set(0, -1, 'A', ColorRed)
	s.Set(0, 100, 'A', ColorRed)

	if s.Get(-1, 0) != ' ' || s.Get(100, 0) != ' ' {
		t.Error("out of bounds Get should return space")
	}
}

func TestScreenDrawText(t *testing.T) {
	s := NewScreen(12, 3)
	s.DrawText(1, 1, "PONG", ColorWhite)
	if got := strings.Split(s.String(), "\n")[1]; got != " PONG       " {
		t.Errorf("row 1 = %q", got)
	}

	s.Clear()
	s.DrawTextCentered(0, "ab", ColorWhite)
	if s.Get(5, 0) != 'a' || s.Get(6, 0) != 'b' {
		t.Errorf("DrawTextCentered placed text at wrong column: %q", s.String())
	}
}

func TestScreenFillRectAndLines(t *testing.T) {
	s := NewScreen(6, 6)
	s.FillRect(1, 1, 2, 3, '#', ColorGray)

	count := 0
	for y := range 6 {
		for x := range 6 {
			if s.Get(x, y) == '#' {
				count++
			}
		}
	}
	if count != 6 {
		t.Errorf("FillRect filled %d cells, expected 6", count)
	}

	s.Clear()
	s.DrawVLine(0, 0, 10, '|', ColorGray)
	s.DrawHLine(0, 5, 10, '-', ColorGray)
	if s.Get(0, 4) != '|' || s.Get(5, 5) != '-' {
		t.Error("lines not drawn where expected")
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(4, 4)
	s.Set(1, 1, 'X', ColorWhite)
	s.Resize(8, 2)

	if s.Width() != 8 || s.Height() != 2 {
		t.Fatalf("Resize() size = %dx%d, expected 8x2", s.Width(), s.Height())
	}
	if s.Get(1, 1) != ' ' {
		t.Error("Resize() should produce a blank buffer")
	}
	if len(strings.Split(s.String(), "\n")) != 2 {
		t.Error("String() row count mismatch after resize")
	}
}
