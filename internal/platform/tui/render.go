package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/pong-ultimate/internal/core"
	"github.com/vovakirdan/pong-ultimate/internal/pong"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault: lipgloss.NewStyle(),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// Visual characters for rendering
const (
	paddleChar = '█'
	ballChar   = '●'
	netChar    = '┊'
	wallChar   = '─'
)

// Minimum terminal size for drawing the field.
const (
	minFieldCols = 24
	minFieldRows = 8
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells with the same color share one style run.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			startColor := s.GetCell(x, y).Color

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// HUD is the text drawn around the field.
type HUD struct {
	Left, Right string // player names
	Message     string // centered over the field
	Footer      string
}

// fieldView projects field units onto the screen rows between the walls.
type fieldView struct {
	top, rows, cols int
	fw, fh          float64
}

func (v fieldView) col(x float64) int {
	return core.Clamp(int(x/v.fw*float64(v.cols)), 0, v.cols-1)
}

func (v fieldView) row(y float64) int {
	return v.top + core.Clamp(int(y/v.fh*float64(v.rows)), 0, v.rows-1)
}

// DrawMatch renders the scoreline, the field and the footer.
func DrawMatch(s *core.Screen, st pong.MatchState, p pong.Params, hud HUD) {
	s.Clear()
	w, h := s.Width(), s.Height()
	if w < minFieldCols || h < minFieldRows {
		s.DrawText(0, 0, "terminal too small", core.ColorRed)
		return
	}

	score := fmt.Sprintf("%s  %d : %d  %s", orDash(hud.Left), st.Score1, st.Score2, orDash(hud.Right))
	s.DrawTextCentered(0, score, core.ColorWhite)
	s.DrawHLine(0, 1, w, wallChar, core.ColorGray)
	s.DrawHLine(0, h-2, w, wallChar, core.ColorGray)

	v := fieldView{top: 2, rows: h - 4, cols: w, fw: p.FieldW, fh: p.FieldH}

	mid := w / 2
	for y := v.top; y < v.top+v.rows; y += 2 {
		s.Set(mid, y, netChar, core.ColorGray)
	}

	drawPaddle(s, v, st.Paddle1, core.ColorCyan)
	drawPaddle(s, v, st.Paddle2, core.ColorMagenta)
	s.Set(v.col(st.Ball.X), v.row(st.Ball.Y), ballChar, core.ColorYellow)

	if hud.Message != "" {
		s.DrawTextCentered(v.top+v.rows/2, " "+hud.Message+" ", core.ColorYellow)
	}
	s.DrawText(0, h-1, hud.Footer, core.ColorGray)
}

func drawPaddle(s *core.Screen, v fieldView, pd pong.Paddle, c core.Color) {
	x := v.col(pd.X + pd.Width/2)
	top, bottom := v.row(pd.Y), v.row(pd.Y+pd.Height-1)
	s.DrawVLine(x, top, bottom-top+1, paddleChar, c)
}

func orDash(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
