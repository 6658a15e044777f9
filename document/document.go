// Package document lays out chapter markup as fixed-width terminal text.
package document

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"bookterm/render"
)

// Chapter is one spine-ordered content document of a book.
type Chapter struct {
	ID     string // archive path, used to resolve links
	Markup string
	Index  int
}

// Rendered is the layout of one chapter at one width.
type Rendered struct {
	Lines   []string
	Anchors map[string]int // id attribute -> line index
	Links   []string       // link targets in encounter order, unresolved
}

// Text returns the rendered lines joined by newlines.
func (r *Rendered) Text() string {
	return strings.Join(r.Lines, "\n")
}

var (
	invisible = set("base", "basefont", "bgsound", "meta", "param", "script", "style")

	void = set("br", "canvas", "col", "command", "embed", "frame", "img", "is",
		"index", "keygen", "link")

	inline = set("a", "abbr", "area", "b", "bdi", "bdo", "big", "button", "cite",
		"code", "dfn", "em", "font", "i", "input", "kbd", "label", "mark",
		"meter", "nobr", "progress", "q", "rp", "rt", "ruby", "s", "samp",
		"small", "span", "strike", "strong", "sub", "sup", "time", "tt", "u",
		"var", "wbr")

	block = set("address", "applet", "article", "aside", "audio", "blockquote", "body",
		"caption", "center", "colgroup", "datalist", "del", "dir", "div", "dd",
		"details", "dl", "dt", "fieldset", "figcaption", "figure", "footer",
		"form", "frameset", "h1", "h2", "h3", "h4", "h5", "h6", "head",
		"header", "hgroup", "hr", "html", "iframe", "ins", "legend", "li",
		"listing", "map", "marquee", "menu", "nav", "noembed", "noframes",
		"noscript", "object", "ol", "optgroup", "option", "p", "pre", "select",
		"section", "source", "summary", "table", "tbody", "td", "tfoot", "th",
		"thead", "title", "tr", "track", "ul", "video")
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsInline reports whether tag flows with the surrounding text.
func IsInline(tag string) bool { return inline[tag] }

var separator = regexp.MustCompile(`\s+`)

// chunk is either a text fragment or a deferred anchor.
type chunk struct {
	text   string
	anchor string
}

// Renderer converts chapter markup into wrapped lines.
type Renderer struct {
	width      int
	hyphenator Hyphenator

	// per-call state
	chunks  []chunk
	pending []string
	lines   []string
	anchors map[string]int
	links   []string
	inBody  bool
	hidden  int
	inPre   int
	indent  int
	hanging bool
}

// NewRenderer creates a renderer wrapping at width cells. hyphenator may be
// nil, in which case words are never broken.
func NewRenderer(width int, hyphenator Hyphenator) *Renderer {
	if width < 1 {
		width = 1
	}
	return &Renderer{width: width, hyphenator: hyphenator}
}

// Render is shorthand for NewRenderer(width, hyphenator).Render(markup).
func Render(markup string, width int, hyphenator Hyphenator) *Rendered {
	return NewRenderer(width, hyphenator).Render(markup)
}

// Render lays out markup. Output depends only on the markup, the width and
// the hyphenator. Markup without a body element is treated as all body.
func (r *Renderer) Render(markup string) *Rendered {
	r.chunks = nil
	r.pending = nil
	r.lines = nil
	r.anchors = make(map[string]int)
	r.links = nil
	r.inBody = !strings.Contains(strings.ToLower(markup), "<body")
	r.hidden = 0
	r.inPre = 0
	r.indent = 0
	r.hanging = false

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			r.flushTail()
			return &Rendered{Lines: r.lines, Anchors: r.anchors, Links: r.links}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, attrs := tagOf(z)
			r.startTag(name, attrs)
			if tt == html.SelfClosingTagToken && !void[name] {
				r.endTag(name)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			r.endTag(string(name))
		case html.TextToken:
			if r.inBody && r.hidden == 0 {
				r.chunks = append(r.chunks, chunk{text: string(z.Text())})
			}
		}
	}
}

func tagOf(z *html.Tokenizer) (string, map[string]string) {
	name, hasAttr := z.TagName()
	attrs := make(map[string]string)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		attrs[string(key)] = string(val)
	}
	return string(name), attrs
}

func (r *Renderer) startTag(tag string, attrs map[string]string) {
	if tag == "body" {
		r.inBody = true
		return
	}
	if !r.inBody {
		return
	}
	if invisible[tag] {
		if tag == "script" || tag == "style" {
			r.hidden++
		}
		return
	}

	if block[tag] && len(r.chunks) > 0 && !r.onlyBullet() {
		r.fill()
		r.separate()
	}

	if id, ok := attrs["id"]; ok && id != "" {
		r.chunks = append(r.chunks, chunk{anchor: id})
	}

	switch {
	case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
		r.text(strings.Repeat("=", int(tag[1]-'0')) + " ")
	case tag == "img":
		if src := attrs["src"]; src != "" {
			r.links = append(r.links, src)
			r.text("![" + strconv.Itoa(len(r.links)) + "][" + attrs["alt"] + "]")
		}
	case tag == "a":
		if href, ok := attrs["href"]; ok {
			r.links = append(r.links, href)
			r.text("[" + strconv.Itoa(len(r.links)) + "]")
		}
	case tag == "br":
		r.fill()
	case tag == "blockquote":
		r.indent += 2
	case tag == "li":
		r.text("* ")
		r.indent += 2
		r.hanging = true
	case tag == "pre":
		r.fill()
		r.inPre++
	}
}

func (r *Renderer) endTag(tag string) {
	if tag == "script" || tag == "style" {
		if r.hidden > 0 {
			r.hidden--
		}
		return
	}
	if !r.inBody {
		return
	}

	switch {
	case tag == "pre" && r.inPre > 0:
		r.inPre--
		r.emitPreformatted()
	case block[tag]:
		r.fill()
	}
	if block[tag] {
		r.separate()
	}

	switch tag {
	case "li":
		r.indent = max(r.indent-2, 0)
		r.hanging = false
	case "blockquote":
		r.indent = max(r.indent-2, 0)
	case "body":
		r.inBody = false
	}
}

// onlyBullet reports whether the buffer holds nothing but a list bullet,
// so a block opening inside a list item continues on the bullet line.
func (r *Renderer) onlyBullet() bool {
	if !r.hanging {
		return false
	}
	var sb strings.Builder
	for _, c := range r.chunks {
		sb.WriteString(c.text)
	}
	return strings.TrimSpace(sb.String()) == "*"
}

func (r *Renderer) text(s string) {
	r.chunks = append(r.chunks, chunk{text: s})
}

// separate appends a blank separator line unless output is empty or
// already ends in one.
func (r *Renderer) separate() {
	if n := len(r.lines); n > 0 && r.lines[n-1] != "" {
		r.lines = append(r.lines, "")
	}
}

// collect moves anchors to the pending list and returns the joined text.
func (r *Renderer) collect() string {
	var sb strings.Builder
	for _, c := range r.chunks {
		if c.anchor != "" {
			r.pending = append(r.pending, c.anchor)
			continue
		}
		sb.WriteString(c.text)
	}
	r.chunks = nil
	return norm.NFC.String(sb.String())
}

// fill word-wraps the chunk buffer into lines.
func (r *Renderer) fill() {
	if len(r.chunks) == 0 {
		return
	}
	text := r.collect()

	var line strings.Builder
	lineWidth := r.indent
	if r.hanging {
		lineWidth = max(r.indent-2, 0)
	}
	line.WriteString(strings.Repeat(" ", lineWidth))

	full := max(r.width-r.indent, 1)
	for _, piece := range splitWords(text) {
		isSep := piece == " "
		w := render.StringWidth(piece)

		word, from := piece, 0
		var breaks []Break
		for lineWidth+w > r.width {
			ok := false
			if r.hyphenator != nil && !isSep {
				if breaks == nil {
					breaks = r.hyphenator.Breaks(word)
				}
				var head string
				if head, ok = nextBreak(word, breaks, from, r.width-lineWidth, full); ok {
					line.WriteString(head + "-")
					from += len(head)
					piece = word[from:]
					w = render.StringWidth(piece)
				}
			}
			r.addLine(line.String())
			line.Reset()
			line.WriteString(strings.Repeat(" ", r.indent))
			lineWidth = r.indent
			if !ok {
				break
			}
		}

		if isSep && lineWidth == r.indent {
			continue
		}

		line.WriteString(piece)
		lineWidth += w
	}

	r.addLine(line.String())
	if !render.IsBlank(text) {
		r.hanging = false
	}
}

// nextBreak returns the longest piece of word[from:] ending at a break
// that fits room cells with its hyphen, provided the rest of the word can
// be laid out on lines of full cells.
func nextBreak(word string, breaks []Break, from, room, full int) (string, bool) {
	for _, b := range breaks {
		if len(b.Head) <= from {
			continue
		}
		head := b.Head[from:]
		if render.StringWidth(head)+1 > room {
			continue
		}
		if render.StringWidth(word[len(b.Head):]) <= full {
			return head, true
		}
		if _, ok := nextBreak(word, breaks, len(b.Head), full, full); ok {
			return head, true
		}
	}
	return "", false
}

// splitWords splits text into words and single-space separators.
func splitWords(text string) []string {
	var pieces []string
	pos := 0
	for _, loc := range separator.FindAllStringIndex(text, -1) {
		if loc[0] > pos {
			pieces = append(pieces, text[pos:loc[0]])
		}
		pieces = append(pieces, " ")
		pos = loc[1]
	}
	if pos < len(text) {
		pieces = append(pieces, text[pos:])
	}
	return pieces
}

// addLine emits a wrapped line; blank lines are dropped.
func (r *Renderer) addLine(line string) {
	if render.IsBlank(line) {
		return
	}
	r.attachPending()
	r.lines = append(r.lines, strings.TrimRight(line, " "))
}

func (r *Renderer) attachPending() {
	for _, id := range r.pending {
		r.anchors[id] = len(r.lines)
	}
	r.pending = nil
}

// emitPreformatted writes the buffered text of a pre block verbatim.
func (r *Renderer) emitPreformatted() {
	text := r.collect()
	text = strings.TrimPrefix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return
	}
	leading := true
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if render.IsBlank(l) {
			// blank lines before the first text would follow a separator
			if n := len(r.lines); leading && (n == 0 || r.lines[n-1] == "") {
				continue
			}
		} else {
			leading = false
			r.attachPending()
		}
		r.lines = append(r.lines, l)
	}
}

func (r *Renderer) flushTail() {
	r.fill()
	for len(r.lines) > 0 && r.lines[len(r.lines)-1] == "" {
		r.lines = r.lines[:len(r.lines)-1]
	}
}
