package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"bookterm/pager"
)

// Directive is one command file line: "set KEY VALUE" or "map KEY COMMAND".
type Directive struct {
	Verb  string
	Key   string
	Value string
	Line  int // in the command file, 0 when typed
}

// CommandError reports a bad directive. File and Line are zero for lines
// typed at the ':' prompt.
type CommandError struct {
	File string
	Line int
	Msg  string
}

func (e *CommandError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// ParseDirective parses one line with shell-style quoting. Blank and
// comment lines report ok=false.
func ParseDirective(line string) (d Directive, ok bool, err error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Directive{}, false, &CommandError{Msg: err.Error()}
	}
	if len(words) == 0 {
		return Directive{}, false, nil
	}
	if words[0] != "set" && words[0] != "map" {
		return Directive{}, false, &CommandError{Msg: fmt.Sprintf("Unknown command %q", words[0])}
	}
	if len(words) != 3 {
		return Directive{}, false, &CommandError{Msg: "Wrong number of arguments: " + strings.TrimSpace(line)}
	}
	return Directive{Verb: words[0], Key: words[1], Value: words[2]}, true, nil
}

// LoadCommands reads the command file at path. A missing file yields no
// directives.
func LoadCommands(path string) ([]Directive, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var directives []Directive
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		d, ok, err := ParseDirective(sc.Text())
		if err != nil {
			var ce *CommandError
			if errors.As(err, &ce) {
				ce.File, ce.Line = path, n
			}
			return nil, err
		}
		if ok {
			d.Line = n
			directives = append(directives, d)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return directives, nil
}

// ApplyAll applies directives in order, naming file and line on failure.
func (c *Config) ApplyAll(path string, directives []Directive) error {
	for _, d := range directives {
		if err := c.Apply(d); err != nil {
			var ce *CommandError
			if errors.As(err, &ce) {
				ce.File, ce.Line = path, d.Line
			}
			return err
		}
	}
	return nil
}

// Apply changes the setting or binding named by d.
func (c *Config) Apply(d Directive) error {
	if d.Verb == "map" {
		if _, ok := pager.ParseCommand(d.Value); !ok {
			return &CommandError{Msg: fmt.Sprintf("Unknown command name %q", d.Value)}
		}
		if c.Keys == nil {
			c.Keys = make(map[string]string)
		}
		c.Keys[d.Key] = d.Value
		return nil
	}

	r := &c.Reader
	var err error
	switch d.Key {
	case "width":
		err = setPositive(&r.Width, d.Value)
	case "horizontal_increment":
		err = setPositive(&r.HorizontalIncrement, d.Value)
	case "hyphenate":
		err = setBool(&r.Hyphenate, d.Value)
	case "highlight":
		err = setBool(&r.Highlight, d.Value)
	case "language":
		r.Language = d.Value
	case "patterns_dir":
		r.PatternsDir = d.Value
	case "status_left":
		r.StatusLeft = d.Value
	case "status_right":
		r.StatusRight = d.Value
	case "dbfile":
		c.State.DBFile = d.Value
	case "state":
		err = setBool(&c.State.Enabled, d.Value)
	case "opener":
		c.Opener.Command = d.Value
	default:
		return &CommandError{Msg: fmt.Sprintf("Unknown setting %q", d.Key)}
	}
	if err != nil {
		return &CommandError{Msg: fmt.Sprintf("Invalid value for %s: %q", d.Key, d.Value)}
	}
	return nil
}

// Settings returns the names accepted by "set", for completion.
func Settings() []string {
	return []string{"dbfile", "highlight", "horizontal_increment", "hyphenate",
		"language", "opener", "patterns_dir", "state", "status_left", "status_right", "width"}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "true", "on":
		return true, nil
	case "0", "false", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err == nil && n < 1 {
		err = fmt.Errorf("not positive: %d", n)
	}
	return n, err
}

// setBool and setPositive leave *dst alone when s does not parse.
func setBool(dst *bool, s string) error {
	b, err := parseBool(s)
	if err == nil {
		*dst = b
	}
	return err
}

func setPositive(dst *int, s string) error {
	n, err := parsePositive(s)
	if err == nil {
		*dst = n
	}
	return err
}
