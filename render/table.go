package render

import "strings"

// BoxStyle defines the characters used for drawing boxes.
type BoxStyle struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
	TopTee      rune
	BottomTee   rune
	LeftTee     rune
	RightTee    rune
	Cross       rune
}

var (
	SingleBox = BoxStyle{
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
		Horizontal: '─', Vertical: '│',
		TopTee: '┬', BottomTee: '┴', LeftTee: '├', RightTee: '┤', Cross: '┼',
	}

	ASCIIBox = BoxStyle{
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		Horizontal: '-', Vertical: '|',
		TopTee: '+', BottomTee: '+', LeftTee: '+', RightTee: '+', Cross: '+',
	}
)

// Table lays out rows of cells as boxed text lines.
type Table struct {
	Headers  []string
	Rows     [][]string
	BoxStyle BoxStyle
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		Headers:  headers,
		BoxStyle: SingleBox,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	for len(cells) < len(t.Headers) {
		cells = append(cells, "")
	}
	t.Rows = append(t.Rows, cells)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = StringWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], StringWidth(cell))
			}
		}
	}
	return widths
}

// Lines renders the table, one string per output line.
func (t *Table) Lines() []string {
	widths := t.columnWidths()
	box := t.BoxStyle

	lines := []string{t.border(widths, box.TopLeft, box.TopTee, box.TopRight)}
	lines = append(lines, t.row(t.Headers, widths))
	lines = append(lines, t.border(widths, box.LeftTee, box.Cross, box.RightTee))
	for _, row := range t.Rows {
		lines = append(lines, t.row(row, widths))
	}
	lines = append(lines, t.border(widths, box.BottomLeft, box.BottomTee, box.BottomRight))
	return lines
}

func (t *Table) border(widths []int, left, mid, right rune) string {
	var sb strings.Builder
	sb.WriteRune(left)
	for i, w := range widths {
		sb.WriteString(strings.Repeat(string(t.BoxStyle.Horizontal), w+2))
		if i < len(widths)-1 {
			sb.WriteRune(mid)
		}
	}
	sb.WriteRune(right)
	return sb.String()
}

func (t *Table) row(cells []string, widths []int) string {
	var sb strings.Builder
	sb.WriteRune(t.BoxStyle.Vertical)
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		sb.WriteByte(' ')
		sb.WriteString(PadRight(cell, w, ' '))
		sb.WriteByte(' ')
		sb.WriteRune(t.BoxStyle.Vertical)
	}
	return sb.String()
}
