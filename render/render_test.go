package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestStringWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"ascii", "hello", 5},
		{"combining mark", "e\u0301te", 3},
		{"wide", "日本", 4},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StringWidth(tt.input); got != tt.expected {
				t.Errorf("StringWidth(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hi", 2, "hi"},
		{"hello", 3, "hel"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Truncate(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, expected %q",
					tt.input, tt.width, result, tt.expected)
			}
		})
	}
}

func TestClipColumns(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		from     int
		cols     int
		expected string
	}{
		{"no scroll", "abcdef", 0, 4, "abcd"},
		{"scrolled", "abcdef", 2, 3, "cde"},
		{"past end", "abc", 5, 3, ""},
		{"wide char cut", "日本語", 1, 4, "本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClipColumns(tt.line, tt.from, tt.cols); got != tt.expected {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5, '-'); got != "ab---" {
		t.Errorf("got %q, expected %q", got, "ab---")
	}
	if got := PadRight("abcdef", 3, '-'); got != "abcdef" {
		t.Errorf("wider input should be returned as is, got %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("  \t") {
		t.Error("whitespace should be blank")
	}
	if IsBlank(" x ") {
		t.Error("text should not be blank")
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(10, 5)

	if c.Width() != 10 || c.Height() != 5 {
		t.Errorf("wrong dimensions: got %dx%d, expected 10x5", c.Width(), c.Height())
	}

	c.Set(0, 0, 'X', Style{})
	if c.Get(0, 0).Rune != 'X' {
		t.Error("Set/Get failed")
	}

	c.Set(-1, 0, 'Y', Style{})
	c.Set(100, 0, 'Y', Style{})
	if c.Get(-1, 0).Rune != ' ' {
		t.Error("out of bounds Set should be ignored")
	}
}

func TestCanvasWideCharacters(t *testing.T) {
	c := NewCanvas(6, 1)
	n := c.WriteString(0, 0, "日本語", Style{})
	if n != 6 {
		t.Errorf("expected 6 cells used, got %d", n)
	}
	if got := c.Row(0); got != "日本語" {
		t.Errorf("Row = %q, expected %q", got, "日本語")
	}
	if strings.Count(c.Render(), "日") != 1 {
		t.Error("wide rune should be rendered once")
	}
}

func TestScreenShow(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, 4, 2)
	s.WriteString(0, 0, "ok", Style{Reverse: true})
	if err := s.Show(); err != nil {
		t.Fatalf("Show: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "\033[0;7mok") {
		t.Errorf("expected reverse video sequence, got %q", out)
	}
	if !strings.HasSuffix(out, CursorHide) {
		t.Error("cursor should be hidden by default")
	}

	s.Resize(8, 3)
	if w, h := s.Size(); w != 8 || h != 3 {
		t.Errorf("Resize: got %dx%d", w, h)
	}
}

func TestTable(t *testing.T) {
	tbl := NewTable("Key", "Command")
	tbl.AddRow("j", "next-line")
	tbl.AddRow("SPACE", "next-page")

	lines := tbl.Lines()
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %q", len(lines), lines)
	}
	s := strings.Join(lines, "\n")
	if !strings.Contains(s, "Key") || !strings.Contains(s, "next-page") {
		t.Error("table should contain headers and data")
	}
	if !strings.HasPrefix(lines[0], "┌") || !strings.HasSuffix(lines[5], "┘") {
		t.Error("table should have box drawing characters")
	}
	for _, l := range lines {
		if StringWidth(l) != StringWidth(lines[0]) {
			t.Errorf("ragged table line %q", l)
		}
	}
}
