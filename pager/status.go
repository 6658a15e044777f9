package pager

import (
	"strconv"
	"strings"

	"bookterm/render"
)

// Default status line templates.
const (
	DefaultStatusLeft  = "-{title}"
	DefaultStatusRight = "{percent:->4}--"
)

// FormatStatus substitutes {name} placeholders in tmpl from data. A
// placeholder may carry a format spec, {name:[fill]align width}, where
// align is one of < > ^; "{percent:->4}" right-aligns in four cells
// padded with dashes. Unknown names expand to nothing; {{ and }} stand
// for literal braces.
func FormatStatus(tmpl string, data map[string]string) string {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '}' && strings.HasPrefix(tmpl[i:], "}}") {
			sb.WriteByte('}')
			i++
			continue
		}
		if c != '{' {
			sb.WriteByte(c)
			continue
		}
		if strings.HasPrefix(tmpl[i:], "{{") {
			sb.WriteByte('{')
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			sb.WriteString(tmpl[i:])
			break
		}
		field := tmpl[i+1 : i+end]
		i += end

		name, spec, _ := strings.Cut(field, ":")
		sb.WriteString(applySpec(data[name], spec))
	}
	return sb.String()
}

func applySpec(value, spec string) string {
	if spec == "" {
		return value
	}
	fill, align := ' ', byte('<')
	runes := []rune(spec)
	switch {
	case len(runes) >= 2 && strings.ContainsRune("<>^", runes[1]):
		fill, align = runes[0], byte(runes[1])
		spec = string(runes[2:])
	case strings.ContainsRune("<>^", runes[0]):
		align = byte(runes[0])
		spec = string(runes[1:])
	}
	width, err := strconv.Atoi(spec)
	if err != nil {
		return value
	}
	pad := width - render.StringWidth(value)
	if pad <= 0 {
		return value
	}
	f := string(fill)
	switch align {
	case '>':
		return strings.Repeat(f, pad) + value
	case '^':
		return strings.Repeat(f, pad/2) + value + strings.Repeat(f, pad-pad/2)
	}
	return value + strings.Repeat(f, pad)
}

// StatusLine lays out left and right at the edges of a cols wide line
// filled with fill. The right part wins when both do not fit.
func StatusLine(left, right string, cols int, fill rune) string {
	right = render.TruncateToWidth(right, cols)
	room := cols - render.StringWidth(right)
	left = render.TruncateToWidth(left, room)
	return render.PadRight(left, room, fill) + right
}
