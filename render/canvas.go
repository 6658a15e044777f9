package render

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// Canvas is a drawable buffer that can be rendered to the terminal.
type Canvas struct {
	width  int
	height int
	cells  [][]Cell
}

// NewCanvas creates a new canvas with the given dimensions.
func NewCanvas(width, height int) *Canvas {
	cells := make([][]Cell, height)
	for y := range cells {
		cells[y] = make([]Cell, width)
		for x := range cells[y] {
			cells[y][x] = Cell{Rune: ' '}
		}
	}
	return &Canvas{width: width, height: height, cells: cells}
}

// TerminalSize returns the current terminal dimensions.
func TerminalSize() (width, height int, err error) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, fmt.Errorf("getting terminal size: %w", err)
	}
	return int(ws.Col), int(ws.Row), nil
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Clear fills the entire canvas with spaces.
func (c *Canvas) Clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = Cell{Rune: ' '}
		}
	}
}

// Set places a rune at the given position with the given style.
func (c *Canvas) Set(x, y int, r rune, style Style) {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return
	}
	c.cells[y][x] = Cell{Rune: r, Style: style}
}

// Get returns the cell at the given position.
func (c *Canvas) Get(x, y int) Cell {
	if x < 0 || x >= c.width || y < 0 || y >= c.height {
		return Cell{Rune: ' '}
	}
	return c.cells[y][x]
}

// WriteString writes a string starting at the given position.
// Returns the number of terminal cells used (not runes).
func (c *Canvas) WriteString(x, y int, s string, style Style) int {
	pos := 0
	for _, r := range s {
		w := UnicodeWidth(r)
		if w == 0 {
			continue
		}
		if x+pos+w > c.width {
			break
		}
		c.Set(x+pos, y, r, style)
		if w == 2 {
			c.Set(x+pos+1, y, 0, style)
		}
		pos += w
	}
	return pos
}

// SetStyle restyles length cells starting at x, leaving the runes alone.
func (c *Canvas) SetStyle(x, y, length int, style Style) {
	if y < 0 || y >= c.height {
		return
	}
	for i := x; i < x+length && i < c.width; i++ {
		if i >= 0 {
			c.cells[y][i].Style = style
		}
	}
}

// Row returns the text of row y without trailing spaces.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	var sb strings.Builder
	for _, cell := range c.cells[y] {
		if cell.Rune != 0 {
			sb.WriteRune(cell.Rune)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Render outputs the canvas as a string with ANSI escape codes.
func (c *Canvas) Render() string {
	var sb strings.Builder
	sb.WriteString(CursorHome)

	var currentStyle Style

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			cell := c.cells[y][x]
			if cell.Rune == 0 {
				continue
			}

			if cell.Style != currentStyle {
				sb.WriteString(styleSequence(cell.Style))
				currentStyle = cell.Style
			}

			sb.WriteRune(cell.Rune)
		}
		if y < c.height-1 {
			sb.WriteString("\r\n")
		}
	}

	sb.WriteString("\033[0m")
	return sb.String()
}

func styleSequence(s Style) string {
	codes := []string{"0"}
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	if s.Reverse {
		codes = append(codes, "7")
	}
	return fmt.Sprintf("\033[%sm", strings.Join(codes, ";"))
}
