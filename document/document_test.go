package document

import (
	"reflect"
	"strings"
	"testing"

	"bookterm/render"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		width    int
		expected []string
	}{
		{"wraps greedily", "<p>one two three four five</p>", 11,
			[]string{"one two", "three four", "five"}},
		{"short paragraphs", "<p>alpha</p><p>beta gamma</p>", 40,
			[]string{"alpha", "", "beta gamma"}},
		{"body only", "<html><head><title>T</title></head><body><p>text</p></body></html>", 40,
			[]string{"text"}},
		{"script dropped", "<body><script>var x = 1;</script><p>t</p></body>", 40,
			[]string{"t"}},
		{"heading", "<h2>Title</h2><p>body</p>", 40,
			[]string{"== Title", "", "body"}},
		{"line break", "<p>one<br/>two</p>", 40,
			[]string{"one", "two"}},
		{"inline tags do not split words", "<p>wo<em>rd</em> next</p>", 40,
			[]string{"word next"}},
		{"collapses whitespace", "<p>  a \n\t b  </p>", 40,
			[]string{"a b"}},
		{"preformatted", "<p>x</p><pre>\n  a  b\n\nc\n</pre><p>y</p>", 40,
			[]string{"x", "", "  a  b", "", "c", "", "y"}},
		{"blockquote", "<blockquote><p>aaa bbb</p></blockquote>", 6,
			[]string{"  aaa", "  bbb"}},
		{"list item", "<ul><li>one two three</li></ul>", 9,
			[]string{"* one two", "  three"}},
		{"nested paragraph in list item", "<ul><li><p>one</p></li><li>two</li></ul>", 40,
			[]string{"* one", "", "* two"}},
		{"no double separators", "<div><p>a</p></div><div><p>b</p></div>", 40,
			[]string{"a", "", "b"}},
		{"long word is not split", "<p>a extraordinary</p>", 6,
			[]string{"a", "extraordinary"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.markup, tt.width, nil).Lines
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestRenderLinks(t *testing.T) {
	r := Render(`<p>See <a href="chap2.xhtml#s2">here</a> and <img src="i.png" alt="pic"/></p>`, 80, nil)

	expected := []string{"chap2.xhtml#s2", "i.png"}
	if !reflect.DeepEqual(r.Links, expected) {
		t.Errorf("links: got %q, expected %q", r.Links, expected)
	}
	if len(r.Lines) != 1 || r.Lines[0] != "See [1]here and ![2][pic]" {
		t.Errorf("got %q", r.Lines)
	}
}

func TestRenderImageWithoutSource(t *testing.T) {
	r := Render(`<p>a <img alt="x"/> b</p>`, 80, nil)
	if len(r.Links) != 0 {
		t.Errorf("expected no links, got %q", r.Links)
	}
}

func TestRenderAnchors(t *testing.T) {
	r := Render(`<p>x</p><div id="empty"></div><h2 id="s2">Title</h2><p id="p3">more</p>`, 40, nil)

	expected := map[string]int{"empty": 2, "s2": 2, "p3": 4}
	if !reflect.DeepEqual(r.Anchors, expected) {
		t.Errorf("got %v, expected %v", r.Anchors, expected)
	}
	for id, line := range r.Anchors {
		if strings.TrimSpace(r.Lines[line]) == "" {
			t.Errorf("anchor %q points at blank line %d", id, line)
		}
	}
}

func TestRenderPreformattedAnchor(t *testing.T) {
	r := Render("<p>x</p><pre id=\"code\">\n\nfirst\n</pre>", 40, nil)
	if got := r.Lines[r.Anchors["code"]]; got != "first" {
		t.Errorf("anchor should point at first text line, got %q", got)
	}
}

func TestRenderHyphenation(t *testing.T) {
	hy := NewWordList("hy-phen-ation")

	tests := []struct {
		name     string
		width    int
		expected []string
	}{
		{"longest fitting break", 9, []string{"a hyphen-", "ation"}},
		{"tail broken again", 7, []string{"a hy-", "phen-", "ation"}},
		{"nothing fits", 3, []string{"a", "hyphenation"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render("<p>a hyphenation</p>", tt.width, hy).Lines
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
			for _, l := range got[:len(got)-1] {
				if render.StringWidth(l) > tt.width {
					t.Errorf("line %q wider than %d", l, tt.width)
				}
			}
		})
	}
}

func TestRenderHyphenationTailMustFit(t *testing.T) {
	hy := NewWordList("ab-cdefghij")
	got := Render("<p>x abcdefghij</p>", 6, hy).Lines
	expected := []string{"x", "abcdefghij"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestRenderIdempotent(t *testing.T) {
	markup := `<h1>T</h1><p id="a">some words that wrap around</p><ul><li>item</li></ul>`
	r := NewRenderer(12, nil)
	first := r.Render(markup)
	second := r.Render(markup)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("renders differ: %q vs %q", first.Lines, second.Lines)
	}
}

func TestWordList(t *testing.T) {
	breaks := NewWordList("hy-phen-ation").Breaks("hyphenation")
	expected := []Break{{"hyphen", "ation"}, {"hy", "phenation"}}
	if !reflect.DeepEqual(breaks, expected) {
		t.Errorf("got %v, expected %v", breaks, expected)
	}
}

func TestPatternFiles(t *testing.T) {
	got := patternFiles("en_US")
	expected := []string{"hyph-en-us.pat.txt", "hyph-en.pat.txt"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %q, expected %q", got, expected)
	}
}

func TestLoadHyphenatorMissing(t *testing.T) {
	if _, err := LoadHyphenator(t.TempDir(), "de"); err == nil {
		t.Error("expected error for missing patterns")
	}
}

func TestCache(t *testing.T) {
	calls := 0
	c := newCache(func(markup string, width int) *Rendered {
		calls++
		return Render(markup, width, nil)
	})
	ch := Chapter{ID: "a.xhtml", Markup: "<p>hello</p>"}

	first := c.Get(ch, 20)
	second := c.Get(ch, 20)
	if first != second {
		t.Error("cache should return the same layout")
	}
	if calls != 1 || c.Misses() != 1 {
		t.Errorf("expected one render, got %d", calls)
	}

	c.Get(Chapter{ID: "b.xhtml", Markup: "<p>b</p>"}, 20)
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}

	c.Get(ch, 30)
	if c.Len() != 1 {
		t.Errorf("width change should clear the cache, got %d entries", c.Len())
	}
	if c.Get(ch, 20) == first {
		t.Error("old width should have been discarded")
	}
	if calls != 4 {
		t.Errorf("expected 4 renders, got %d", calls)
	}
}

func TestPrettySource(t *testing.T) {
	got := PrettySource("<div><p>Hi   <b>there</b>\n</p><br/><p>\n  <a href=\"x\">link</a></p></div>")
	expected := []string{
		"<div>",
		"  <p>",
		"    Hi <b>there</b>",
		"  </p>",
		"  <br/>",
		"  <p>",
		"    <a href=\"x\">link</a>",
		"  </p>",
		"</div>",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %q, expected %q", got, expected)
	}
}
