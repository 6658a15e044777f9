package lineedit

import (
	"strings"
	"unicode/utf8"

	"bookterm/render"
)

// Status tells how a prompt ended.
type Status int

const (
	Completed   Status = iota // the user submitted the line
	Cancelled                 // the user aborted the edit
	Interrupted               // the terminal was resized; redraw and ask again
)

// Result is the outcome of Prompt.
type Result struct {
	Status Status
	Text   string
}

// KeySource delivers key names, render.KeyReader being the usual one.
type KeySource interface {
	ReadKey() (string, error)
}

// Display draws the prompt line. cursor is the display column of the
// cursor within line.
type Display interface {
	DrawPrompt(line string, cursor int) error
}

// Completer returns the candidates that may replace text.
type Completer func(text string) []string

// History is a list of previously submitted lines, oldest first.
type History struct {
	entries []string
	max     int
}

// NewHistory creates a history keeping at most max lines (0 = unlimited).
func NewHistory(max int) *History {
	return &History{max: max}
}

// Add appends line unless it is empty or repeats the latest entry.
func (h *History) Add(line string) {
	if line == "" || (len(h.entries) > 0 && h.entries[len(h.entries)-1] == line) {
		return
	}
	h.entries = append(h.entries, line)
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Entries returns the stored lines, oldest first.
func (h *History) Entries() []string {
	return h.entries
}

// Options configure one Prompt call.
type Options struct {
	History  *History
	Complete Completer
	Scheme   KeyScheme // defaults to emacs
}

// Prompt reads one line after the label prompt. A submitted line is added
// to the history. Read errors are returned as is.
func Prompt(keys KeySource, display Display, prompt string, opts Options) (Result, error) {
	scheme := opts.Scheme
	if scheme == nil {
		scheme = NewEmacsScheme()
	}

	e := New()
	var hist []string
	if opts.History != nil {
		hist = opts.History.entries
	}
	histPos := len(hist)
	var draft string

	var cycle []string
	cyclePos := 0

	for {
		line := prompt + e.Text()
		if err := display.DrawPrompt(line, render.StringWidth(prompt)+e.CursorColumn()); err != nil {
			return Result{}, err
		}

		key, err := keys.ReadKey()
		if err != nil {
			return Result{}, err
		}
		if key != "TAB" {
			cycle = nil
		}

		switch key {
		case render.KeyResize:
			return Result{Status: Interrupted, Text: e.Text()}, nil
		case "UP", "CTRL-P":
			if histPos > 0 {
				if histPos == len(hist) {
					draft = e.Text()
				}
				histPos--
				e.Set(hist[histPos])
			}
			continue
		case "DOWN", "CTRL-N":
			if histPos < len(hist) {
				histPos++
				if histPos == len(hist) {
					e.Set(draft)
				} else {
					e.Set(hist[histPos])
				}
			}
			continue
		case "TAB":
			if opts.Complete == nil {
				continue
			}
			if cycle != nil {
				cyclePos = (cyclePos + 1) % len(cycle)
				e.Set(cycle[cyclePos])
				continue
			}
			candidates := opts.Complete(e.Text())
			switch {
			case len(candidates) == 1:
				e.Set(candidates[0])
			case len(candidates) > 1:
				if common := commonPrefix(candidates); common != e.Text() {
					e.Set(common)
				} else {
					cycle, cyclePos = candidates, 0
					e.Set(cycle[0])
				}
			}
			continue
		}

		ev := scheme.HandleKey(e, key)
		switch {
		case ev.Submit:
			if opts.History != nil {
				opts.History.Add(e.Text())
			}
			return Result{Status: Completed, Text: e.Text()}, nil
		case ev.Cancel:
			return Result{Status: Cancelled}, nil
		}
	}
}

func commonPrefix(words []string) string {
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			_, size := utf8.DecodeLastRuneInString(prefix)
			prefix = prefix[:len(prefix)-size]
		}
	}
	return prefix
}
