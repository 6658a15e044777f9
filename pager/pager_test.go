package pager

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"bookterm/render"
)

type keyList []string

func (k *keyList) ReadKey() (string, error) {
	if len(*k) == 0 {
		return "", io.EOF
	}
	key := (*k)[0]
	*k = (*k)[1:]
	return key, nil
}

func newTestPager(lines []string, cols, rows int, keys ...string) (*Pager, *render.Screen) {
	s := render.NewScreen(&bytes.Buffer{}, cols, rows)
	k := keyList(keys)
	return New(s, &k, Text(lines)), s
}

func TestPagerMotions(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		expected int
	}{
		{"next line", []string{"j"}, 1},
		{"prefix", []string{"3", "j"}, 3},
		{"multi digit prefix", []string{"1", "2", "g"}, 7},
		{"goto line", []string{"4", "g"}, 3},
		{"goto end", []string{"G"}, 7},
		{"goto end with prefix", []string{"2", "G"}, 1},
		{"page", []string{"SPACE"}, 3},
		{"page back", []string{"G", "BACKSPACE"}, 4},
		{"percent", []string{"5", "0", "%"}, 5},
		{"prefix cleared after command", []string{"2", "j", "j"}, 3},
		{"unbound key keeps prefix", []string{"2", "x", "j"}, 2},
		{"cancel prefix", []string{"2", "CTRL-G", "j"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPager(numbered(10), 20, 5, tt.keys...)
			if err := p.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if p.View.Y() != tt.expected {
				t.Errorf("got y %d, expected %d", p.View.Y(), tt.expected)
			}
		})
	}
}

func TestPagerDraw(t *testing.T) {
	p, s := newTestPager(numbered(10), 20, 5, "j")
	p.Title = "T"
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}

	if got := s.Row(0); got != "line 2" {
		t.Errorf("first row: got %q", got)
	}
	status := s.Row(3)
	if !strings.HasPrefix(status, "-T---") || !strings.HasSuffix(status, "-40%--") {
		t.Errorf("status line: got %q", status)
	}
	if !s.Get(0, 3).Style.Reverse || !s.Get(10, 3).Style.Reverse {
		t.Error("status line should be in reverse video")
	}
}

func TestPagerUnboundKey(t *testing.T) {
	p, s := newTestPager(numbered(10), 40, 5, "7", "x")
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if got := s.Row(4); !strings.HasPrefix(got, "Key x is not bound.") {
		t.Errorf("message line: got %q", got)
	}
	if p.Prefix() != "7" {
		t.Errorf("prefix should survive an unbound key, got %q", p.Prefix())
	}
}

func TestPagerSearch(t *testing.T) {
	lines := numbered(10)
	lines[6] = "the needle"
	p, s := newTestPager(lines, 20, 5, "/", "n", "e", "e", "d", "RETURN")
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if p.View.Y() != 6 {
		t.Errorf("expected y 6, got %d", p.View.Y())
	}
	if !p.View.Highlight() {
		t.Error("a search should enable highlighting")
	}
	if !s.Get(4, 0).Style.Reverse || s.Get(3, 0).Style.Reverse {
		t.Error("only the match should be highlighted")
	}
}

func TestPagerSearchNotFound(t *testing.T) {
	p, s := newTestPager(numbered(10), 30, 5, "/", "z", "RETURN")
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if got := s.Row(4); got != "Pattern not found" {
		t.Errorf("message: got %q", got)
	}
}

func TestPagerPromptInterrupted(t *testing.T) {
	p, _ := newTestPager(numbered(10), 20, 5, "/", "a", render.KeyResize, "RETURN")
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if p.View.Pattern() != nil {
		t.Error("an interrupted prompt should not set a pattern")
	}
}

type widthSource struct {
	widths []int
}

func (w *widthSource) Lines(width int) []string {
	w.widths = append(w.widths, width)
	return []string{"text"}
}

func TestPagerSetWidth(t *testing.T) {
	src := &widthSource{}
	s := render.NewScreen(&bytes.Buffer{}, 40, 5)
	k := keyList{"1", "5", "|", "1", "5", "|"}
	p := New(s, &k, src)
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if len(src.widths) != 2 || src.widths[0] != 40 || src.widths[1] != 15 {
		t.Errorf("expected one re-render at 15, got %v", src.widths)
	}
}

func TestPagerSetWidthZero(t *testing.T) {
	src := &widthSource{}
	s := render.NewScreen(&bytes.Buffer{}, 40, 5)
	k := keyList{"0", "|"}
	p := New(s, &k, src)
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if p.View.Width() != 40 {
		t.Errorf("got width %d, expected 40", p.View.Width())
	}
	if len(src.widths) != 1 {
		t.Errorf("expected no re-render, got %v", src.widths)
	}
	if got := s.Row(4); got != "Prefix out of range" {
		t.Errorf("got %q, expected %q", got, "Prefix out of range")
	}
}

func TestPagerResize(t *testing.T) {
	p, s := newTestPager(numbered(10), 40, 5, render.KeyResize)
	p.TermSize = func() (int, int, error) { return 30, 8, nil }
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if w, h := s.Size(); w != 30 || h != 8 {
		t.Errorf("screen should be resized, got %dx%d", w, h)
	}
	if p.View.Rows() != 6 || p.View.Width() != 30 {
		t.Errorf("got %d rows, width %d", p.View.Rows(), p.View.Width())
	}
}

type exitOnPage struct {
	seen []Command
}

func (h *exitOnPage) Handle(p *Pager, cmd Command, n Count) (Action, error) {
	h.seen = append(h.seen, cmd)
	switch cmd {
	case NextPage:
		return Exit, nil
	case PrevLine:
		p.Message("intercepted")
		return Handled, nil
	}
	return Unhandled, nil
}

func TestPagerHandler(t *testing.T) {
	p, _ := newTestPager(numbered(10), 20, 5, "j", "j", "k", "SPACE", "j")
	h := &exitOnPage{}
	p.Handler = h
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if len(h.seen) != 4 {
		t.Errorf("pager should exit on the page command, saw %v", h.seen)
	}
	if p.View.Y() != 2 {
		t.Errorf("handled command should skip the default, got y %d", p.View.Y())
	}
}

func TestPagerEval(t *testing.T) {
	var got string
	p, _ := newTestPager(numbered(3), 20, 5, ":", "s", "e", "t", "RETURN")
	p.Eval = func(_ *Pager, line string) error {
		got = line
		return nil
	}
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if got != "set" {
		t.Errorf("got %q, expected %q", got, "set")
	}
}

func TestPagerHelp(t *testing.T) {
	p, _ := newTestPager(numbered(3), 60, 10, "h", "q", "j", "q")
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Join(HelpLines(DefaultKeymap()), "\n")
	for _, want := range []string{"next_line", "SPACE", "search_forward"} {
		if !strings.Contains(lines, want) {
			t.Errorf("help should mention %q", want)
		}
	}
}

func TestKeymapBind(t *testing.T) {
	k := DefaultKeymap()
	if err := k.Bind("x", "next_page"); err != nil {
		t.Fatal(err)
	}
	if k["x"] != NextPage {
		t.Errorf("got %v", k["x"])
	}
	if err := k.Bind("y", "no_such_command"); err == nil {
		t.Error("expected an error for an unknown command")
	}
	if c, ok := ParseCommand("follow_link"); !ok || c != FollowLink {
		t.Error("ParseCommand failed")
	}
	if NextLine.String() != "next_line" {
		t.Errorf("got %q", NextLine.String())
	}
}
