package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/speedata/hyphenation"
	"golang.org/x/text/language"
)

// Break is one way of splitting a word across two lines. Head does not
// include the hyphen.
type Break struct {
	Head string
	Tail string
}

// Hyphenator yields the break points of a word, longest head first.
type Hyphenator interface {
	Breaks(word string) []Break
}

// ErrNoPatterns is returned when no pattern file exists for a language.
var ErrNoPatterns = errors.New("no hyphenation patterns for language")

// PatternHyphenator breaks words using TeX hyphenation patterns.
type PatternHyphenator struct {
	lang *hyphenation.Lang
}

// LoadHyphenator reads the hyph-utf8 pattern file for lang from dir.
// Both "en_US" and "en-US" forms are accepted; a missing regional file
// falls back to the base language.
func LoadHyphenator(dir, lang string) (*PatternHyphenator, error) {
	for _, name := range patternFiles(lang) {
		f, err := os.Open(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()

		l, err := hyphenation.New(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		return &PatternHyphenator{lang: l}, nil
	}
	return nil, fmt.Errorf("%w %q in %s", ErrNoPatterns, lang, dir)
}

func patternFiles(lang string) []string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return nil
	}
	names := []string{"hyph-" + strings.ToLower(tag.String()) + ".pat.txt"}
	if base, conf := tag.Base(); conf != language.No {
		b := base.String()
		names = append(names, "hyph-"+b+".pat.txt")
		if b == "en" && names[0] != "hyph-en-us.pat.txt" {
			names = append(names, "hyph-en-us.pat.txt")
		}
	}
	return names
}

// Breaks implements Hyphenator. Leading and trailing punctuation stays
// attached to the head and tail.
func (h *PatternHyphenator) Breaks(word string) []Break {
	runes := []rune(word)
	start, end := 0, len(runes)
	for start < end && !unicode.IsLetter(runes[start]) {
		start++
	}
	for end > start && !unicode.IsLetter(runes[end-1]) {
		end--
	}
	if end-start < 2 {
		return nil
	}
	core := runes[start:end]

	var points []int
	for _, p := range h.lang.Hyphenate(string(core)) {
		if p > 0 && p < len(core) {
			points = append(points, p)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(points)))

	breaks := make([]Break, 0, len(points))
	for _, p := range points {
		breaks = append(breaks, Break{
			Head: string(runes[:start+p]),
			Tail: string(runes[start+p:]),
		})
	}
	return breaks
}

// WordList is a Hyphenator backed by explicit break positions, written
// with hyphens: "hy-phen-ation".
type WordList map[string][]Break

// NewWordList builds a WordList from hyphenated spellings.
func NewWordList(spellings ...string) WordList {
	wl := make(WordList)
	for _, s := range spellings {
		parts := strings.Split(s, "-")
		word := strings.Join(parts, "")
		var breaks []Break
		for i := len(parts) - 1; i > 0; i-- {
			head := strings.Join(parts[:i], "")
			breaks = append(breaks, Break{Head: head, Tail: word[len(head):]})
		}
		wl[word] = breaks
	}
	return wl
}

// Breaks implements Hyphenator.
func (wl WordList) Breaks(word string) []Break {
	return wl[word]
}
