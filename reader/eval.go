package reader

import (
	"strings"

	"bookterm/config"
	"bookterm/pager"
)

// Eval applies a command file directive typed at the ':' prompt.
func (r *Reader) Eval(p *pager.Pager, line string) error {
	d, ok, err := config.ParseDirective(line)
	if err != nil || !ok {
		return err
	}
	if err := r.cfg.Apply(d); err != nil {
		return err
	}
	r.log.Info("applied directive", "line", line)
	return r.Configure()
}

// complete offers directive words for the ':' prompt: the verb, a setting
// name after "set" and a command name after "map KEY".
func (r *Reader) complete(line string) []string {
	words := strings.Fields(line)
	partial := ""
	if len(words) > 0 && !strings.HasSuffix(line, " ") {
		partial = words[len(words)-1]
		words = words[:len(words)-1]
	}
	head := line[:len(line)-len(partial)]

	var options []string
	suffix := " "
	switch {
	case len(words) == 0:
		options = []string{"map", "set"}
	case len(words) == 1 && words[0] == "set":
		options = config.Settings()
	case len(words) == 2 && words[0] == "map":
		options = pager.CommandNames()
		suffix = ""
	}

	var candidates []string
	for _, o := range options {
		if strings.HasPrefix(o, partial) {
			candidates = append(candidates, head+o+suffix)
		}
	}
	return candidates
}
