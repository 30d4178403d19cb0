package core

// Color is a foreground color for a screen cell. The terminal layer maps it
// to an ANSI code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorWhite
	ColorGray
	ColorCyan
	ColorMagenta
	ColorYellow
	ColorGreen
	ColorRed
)
