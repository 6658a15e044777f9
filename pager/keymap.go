package pager

import (
	"fmt"
	"sort"
)

// Keymap binds key names, as produced by render.KeyReader, to commands.
type Keymap map[string]Command

// DefaultKeymap returns the bindings of a plain text viewer.
func DefaultKeymap() Keymap {
	return Keymap{
		"DOWN":      NextLine,
		"RETURN":    NextLine,
		"j":         NextLine,
		"UP":        PrevLine,
		"k":         PrevLine,
		"LEFT":      ScrollLeft,
		"ESC-(":     ScrollLeft,
		"RIGHT":     ScrollRight,
		"ESC-)":     ScrollRight,
		"q":         Quit,
		"g":         GotoLine,
		"G":         GotoEnd,
		"PAGE_DOWN": NextPage,
		"SPACE":     NextPage,
		"PAGE_UP":   PrevPage,
		"BACKSPACE": PrevPage,
		"END":       LastPage,
		"HOME":      FirstPage,
		"CTRL-L":    Redraw,
		"CTRL-G":    CancelPrefix,
		"|":         SetWidth,
		"%":         GotoPercent,
		"/":         SearchForward,
		"?":         SearchBackward,
		"ESC-u":     ToggleHighlight,
		"n":         RepeatSearch,
		"N":         ReverseSearch,
		":":         EvalCommand,
		"!":         ShellEscape,
		"h":         ShowHelp,
	}
}

// Clone returns an independent copy of k.
func (k Keymap) Clone() Keymap {
	c := make(Keymap, len(k))
	for key, cmd := range k {
		c[key] = cmd
	}
	return c
}

// Bind maps key to the command called name.
func (k Keymap) Bind(key, name string) error {
	cmd, ok := ParseCommand(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	k[key] = cmd
	return nil
}

// Keys returns the bound keys in alphabetical order.
func (k Keymap) Keys() []string {
	keys := make([]string, 0, len(k))
	for key := range k {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
