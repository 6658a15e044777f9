package document

import (
	"strings"

	"golang.org/x/net/html"
)

// PrettySource re-indents markup with one block tag per line, two spaces
// per nesting level. Text and inline tags flow together on one line with
// whitespace collapsed; void elements do not nest.
func PrettySource(markup string) []string {
	var lines []string
	depth := 0
	inRun := false // the last line holds text and inline tags

	endRun := func() {
		if inRun {
			lines[len(lines)-1] = strings.TrimRight(lines[len(lines)-1], " ")
			inRun = false
		}
	}
	emit := func(s string) {
		endRun()
		lines = append(lines, strings.Repeat("  ", depth)+s)
	}
	flow := func(s string) {
		if inRun {
			lines[len(lines)-1] += s
			return
		}
		if s = strings.TrimLeft(s, " "); s != "" {
			lines = append(lines, strings.Repeat("  ", depth)+s)
			inRun = true
		}
	}

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		raw := string(z.Raw())
		switch tt {
		case html.ErrorToken:
			endRun()
			return lines
		case html.StartTagToken:
			name, _ := z.TagName()
			switch {
			case IsInline(string(name)):
				flow(raw)
			case void[string(name)]:
				emit(raw)
			default:
				emit(raw)
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if IsInline(string(name)) {
				flow(raw)
				continue
			}
			depth = max(depth-1, 0)
			emit(raw)
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if IsInline(string(name)) {
				flow(raw)
			} else {
				emit(raw)
			}
		case html.DoctypeToken, html.CommentToken:
			emit(raw)
		case html.TextToken:
			flow(separator.ReplaceAllString(string(z.Text()), " "))
		}
	}
}
