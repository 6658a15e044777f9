// Package render provides terminal rendering primitives: display-width
// measurement, a cell canvas, raw-mode terminal control and key decoding.
package render

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Cell represents a single character cell in the terminal.
// A Rune of 0 marks the right half of a wide character.
type Cell struct {
	Rune  rune
	Style Style
}

// Style represents text styling for a cell.
type Style struct {
	Bold      bool
	Dim       bool
	Underline bool
	Reverse   bool
}

var width = runewidth.NewCondition()

// SetEastAsian switches ambiguous-width characters to two cells. It is set
// once at startup from the locale, before any measurement happens.
func SetEastAsian(on bool) {
	c := runewidth.NewCondition()
	c.EastAsianWidth = on
	width = c
}

// UnicodeWidth returns the display width of a rune in terminal cells.
func UnicodeWidth(r rune) int {
	if r < 0x20 || r == 0x7F {
		return 0
	}
	return width.RuneWidth(r)
}

// StringWidth returns the display width of a string in terminal cells.
// Combining marks occupy no cells.
func StringWidth(s string) int {
	return width.StringWidth(s)
}

// TruncateToWidth truncates a string to fit within the specified width.
func TruncateToWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	w := 0
	for i, r := range s {
		rw := UnicodeWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}

	return s
}

// Truncate truncates a string adding ellipsis if needed.
func Truncate(s string, maxWidth int) string {
	if StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return TruncateToWidth(s, maxWidth)
	}
	return TruncateToWidth(s, maxWidth-3) + "..."
}

// ClipColumns returns the part of s that is visible when the line is
// scrolled left by from cells and the window is cols cells wide. A wide
// character cut by the left edge is dropped.
func ClipColumns(s string, from, cols int) string {
	if cols <= 0 {
		return ""
	}
	start, w := -1, 0
	for i, r := range s {
		rw := UnicodeWidth(r)
		if w >= from && start < 0 {
			start = i
		}
		w += rw
	}
	if start < 0 {
		return ""
	}
	return TruncateToWidth(s[start:], cols)
}

// ColumnOf returns the display column at which byte offset off of s starts.
func ColumnOf(s string, off int) int {
	if off > len(s) {
		off = len(s)
	}
	return StringWidth(s[:off])
}

// PadRight fills s with fill up to width cells.
func PadRight(s string, maxWidth int, fill rune) string {
	w := StringWidth(s)
	if w >= maxWidth {
		return s
	}
	return s + strings.Repeat(string(fill), (maxWidth-w)/max(UnicodeWidth(fill), 1))
}

// IsBlank returns true if the string contains only whitespace.
func IsBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
