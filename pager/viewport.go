package pager

import (
	"regexp"

	"bookterm/render"
)

// DefaultWidth is the wrap width used until one is configured.
const DefaultWidth = 80

// Direction of a search.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Viewport is the scroll state over a list of lines. All motions keep
// 0 <= y <= max(0, len(lines)-rows) and 0 <= x <= max(0, maxLineWidth-cols).
type Viewport struct {
	lines        []string
	maxLineWidth int

	y, x  int
	width int // wrap width asked of the source
	rows  int // text rows, without status and message lines
	cols  int
	hinc  int // horizontal scroll increment

	pattern   *regexp.Regexp
	direction Direction
	highlight bool
	matches   []int

	// line reached by the last match jump and the y it produced, so that
	// a clamped jump near the end still round-trips.
	lastMatch int
	lastY     int
}

// NewViewport creates a viewport for a cols x rows screen. Two rows are
// reserved for the status and message lines.
func NewViewport(cols, rows int) *Viewport {
	v := &Viewport{width: DefaultWidth, lastMatch: -1}
	v.Resize(cols, rows)
	v.hinc = v.cols / 2
	v.SetLines(nil)
	return v
}

// Resize adapts to a new screen size. It reports whether the wrap width
// had to shrink to fit.
func (v *Viewport) Resize(cols, rows int) bool {
	v.rows = max(rows-2, 1)
	v.cols = max(cols, 1)
	v.clamp()
	if v.width > v.cols {
		v.width = v.cols
		return true
	}
	return false
}

// SetLines replaces the text. Search matches are recomputed and the
// scroll position is clamped.
func (v *Viewport) SetLines(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	v.lines = lines
	v.maxLineWidth = 0
	for _, l := range lines {
		v.maxLineWidth = max(v.maxLineWidth, render.StringWidth(l))
	}
	v.findMatches()
	v.clamp()
}

func (v *Viewport) Lines() []string { return v.lines }
func (v *Viewport) Y() int          { return v.y }
func (v *Viewport) X() int          { return v.x }
func (v *Viewport) Rows() int       { return v.rows }
func (v *Viewport) Cols() int       { return v.cols }
func (v *Viewport) Width() int      { return v.width }

// SetWidth sets the wrap width, limited to the screen. It reports
// whether the width changed.
func (v *Viewport) SetWidth(w int) bool {
	w = max(1, min(w, v.cols))
	if w == v.width {
		return false
	}
	v.width = w
	return true
}

func (v *Viewport) maxY() int { return max(0, len(v.lines)-v.rows) }
func (v *Viewport) maxX() int { return max(0, v.maxLineWidth-v.cols) }

func (v *Viewport) clamp() {
	v.y = max(0, min(v.y, v.maxY()))
	v.x = max(0, min(v.x, v.maxX()))
}

// SetY scrolls to line y, clamped into range.
func (v *Viewport) SetY(y int) {
	v.y = y
	v.clamp()
}

// NextLine scrolls forward n lines.
func (v *Viewport) NextLine(n int) { v.SetY(v.y + n) }

// PrevLine scrolls backward n lines.
func (v *Viewport) PrevLine(n int) { v.SetY(v.y - n) }

// NextPage scrolls forward one screen. It reports false if the last page
// is already shown.
func (v *Viewport) NextPage() bool {
	if v.y+v.rows >= len(v.lines) {
		return false
	}
	v.SetY(v.y + v.rows)
	return true
}

// PrevPage scrolls backward one screen. It reports false at the top.
func (v *Viewport) PrevPage() bool {
	if v.y == 0 {
		return false
	}
	v.SetY(v.y - v.rows)
	return true
}

// FirstPage scrolls to the top.
func (v *Viewport) FirstPage() { v.SetY(0) }

// LastPage scrolls so that the last line is at the bottom of the screen.
func (v *Viewport) LastPage() { v.SetY(v.maxY()) }

// GotoLine scrolls to the 1-based line n. Lines past the end give the
// last page.
func (v *Viewport) GotoLine(n int) { v.SetY(n - 1) }

// GotoPercent scrolls to the line n percent into the text.
func (v *Viewport) GotoPercent(n int) { v.SetY(n * len(v.lines) / 100) }

// ScrollLeft scrolls left by n columns, or by the current increment if n
// is 0. A given n becomes the new increment.
func (v *Viewport) ScrollLeft(n int) {
	if n > 0 {
		v.hinc = n
	}
	v.x -= v.hinc
	v.clamp()
}

// ScrollRight scrolls right like ScrollLeft.
func (v *Viewport) ScrollRight(n int) {
	if n > 0 {
		v.hinc = n
	}
	v.x += v.hinc
	v.clamp()
}

// SetIncrement sets the default horizontal scroll step.
func (v *Viewport) SetIncrement(n int) {
	if n > 0 {
		v.hinc = n
	}
}

// Percent returns how far the last visible line is into the text.
func (v *Viewport) Percent() int {
	last := min(v.y+v.rows, len(v.lines))
	return last * 100 / len(v.lines)
}

// SetPattern compiles and enables a search pattern. Highlighting is
// switched on.
func (v *Viewport) SetPattern(expr string, dir Direction) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return err
	}
	v.pattern = re
	v.direction = dir
	v.highlight = true
	v.findMatches()
	return nil
}

// Pattern returns the active search pattern, or nil.
func (v *Viewport) Pattern() *regexp.Regexp { return v.pattern }

// Direction returns the direction of the last search.
func (v *Viewport) Direction() Direction { return v.direction }

// Highlight reports whether matches are shown highlighted.
func (v *Viewport) Highlight() bool { return v.highlight }

// SetHighlight switches match highlighting.
func (v *Viewport) SetHighlight(on bool) { v.highlight = on }

// Matches returns the indices of the lines matching the pattern.
func (v *Viewport) Matches() []int { return v.matches }

func (v *Viewport) findMatches() {
	v.matches = v.matches[:0]
	v.lastMatch = -1
	if v.pattern == nil {
		return
	}
	for i, l := range v.lines {
		if v.pattern.MatchString(l) {
			v.matches = append(v.matches, i)
		}
	}
}

// origin is the line the next match search is relative to.
func (v *Viewport) origin() int {
	if v.lastMatch >= 0 && v.y == v.lastY {
		return v.lastMatch
	}
	return v.y
}

// NextMatch scrolls to the first matching line after the current one.
// It reports whether there was one.
func (v *Viewport) NextMatch() bool { return v.NextMatchAfter(v.origin()) }

// PrevMatch scrolls to the last matching line before the current one.
func (v *Viewport) PrevMatch() bool { return v.PrevMatchBefore(v.origin()) }

// NextMatchAfter scrolls to the first matching line with index > line.
func (v *Viewport) NextMatchAfter(line int) bool {
	for _, m := range v.matches {
		if m > line {
			v.jumpToMatch(m)
			return true
		}
	}
	return false
}

// PrevMatchBefore scrolls to the last matching line with index < line.
func (v *Viewport) PrevMatchBefore(line int) bool {
	for i := len(v.matches) - 1; i >= 0; i-- {
		if m := v.matches[i]; m < line {
			v.jumpToMatch(m)
			return true
		}
	}
	return false
}

func (v *Viewport) jumpToMatch(m int) {
	v.SetY(m)
	v.lastMatch, v.lastY = m, v.y
}

// Repeat continues the last search, reversed if asked.
func (v *Viewport) Repeat(reverse bool) bool {
	if (v.direction == Forward) != reverse {
		return v.NextMatch()
	}
	return v.PrevMatch()
}
