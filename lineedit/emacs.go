package lineedit

import "unicode/utf8"

// EmacsScheme implements emacs-style keybindings. Every printable key is
// inserted.
type EmacsScheme struct{}

// NewEmacsScheme creates a new emacs keybinding scheme.
func NewEmacsScheme() *EmacsScheme {
	return &EmacsScheme{}
}

// Name returns the scheme name.
func (s *EmacsScheme) Name() string {
	return "emacs"
}

// HandleKey processes a key press using emacs keybindings.
func (s *EmacsScheme) HandleKey(e *Editor, key string) Event {
	switch key {
	case "ESC-\x7f": // Alt+Backspace
		e.SaveState()
		e.DeleteWordBackward()
		return Event{Consumed: true, TextChanged: true}
	case "ESC-b", "ESC-B":
		e.WordLeft()
		return Event{Consumed: true}
	case "ESC-f", "ESC-F":
		e.WordRight()
		return Event{Consumed: true}
	case "ESC-d", "ESC-D":
		e.SaveState()
		e.DeleteWordForward()
		return Event{Consumed: true, TextChanged: true}

	case "ESC", "CTRL-G", "CTRL-C":
		return Event{Consumed: true, Cancel: true}
	case "RETURN":
		return Event{Consumed: true, Submit: true}

	case "CTRL-A", "HOME":
		e.Home()
		return Event{Consumed: true}
	case "CTRL-E", "END":
		e.End()
		return Event{Consumed: true}
	case "CTRL-F", "RIGHT":
		e.Right()
		return Event{Consumed: true}
	case "CTRL-B", "LEFT":
		e.Left()
		return Event{Consumed: true}

	case "CTRL-D", "DELETE":
		e.SaveState()
		return Event{Consumed: true, TextChanged: e.DeleteForward()}
	case "BACKSPACE":
		e.SaveState()
		return Event{Consumed: true, TextChanged: e.DeleteBackward()}
	case "CTRL-K":
		e.SaveState()
		e.KillToEnd()
		return Event{Consumed: true, TextChanged: true}
	case "CTRL-U":
		e.SaveState()
		e.KillToStart()
		return Event{Consumed: true, TextChanged: true}
	case "CTRL-W":
		e.SaveState()
		e.DeleteWordBackward()
		return Event{Consumed: true, TextChanged: true}
	case "CTRL-T":
		e.SaveState()
		e.Transpose()
		return Event{Consumed: true, TextChanged: true}
	case "CTRL-Z", "CTRL-_": // undo
		return Event{Consumed: true, TextChanged: e.Undo()}
	case "ESC-_":
		return Event{Consumed: true, TextChanged: e.Redo()}
	case "SPACE":
		e.Insert(" ")
		return Event{Consumed: true, TextChanged: true}
	}

	if r, size := utf8.DecodeRuneInString(key); size == len(key) && r >= ' ' && r != utf8.RuneError {
		e.Insert(key)
		return Event{Consumed: true, TextChanged: true}
	}
	return Event{Consumed: false}
}
