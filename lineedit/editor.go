// Package lineedit provides a single-line editor with emacs-style
// keybindings. The cursor moves over grapheme clusters, so a combining
// mark stays attached to its base character.
package lineedit

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"bookterm/render"
)

// editorState represents a snapshot of editor state for undo.
type editorState struct {
	text   []string
	cursor int
}

// Editor is a single-line text editor. Text is held as grapheme
// clusters and the cursor is a cluster index.
type Editor struct {
	text        []string
	cursor      int
	history     []editorState // Undo history stack
	redoHistory []editorState // Redo history stack
}

// New creates a new empty Editor.
func New() *Editor {
	return &Editor{}
}

func segment(s string) []string {
	var clusters []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		clusters = append(clusters, g.Str())
	}
	return clusters
}

// Text returns the current text.
func (e *Editor) Text() string {
	return strings.Join(e.text, "")
}

// Cursor returns the cursor position in grapheme clusters.
func (e *Editor) Cursor() int {
	return e.cursor
}

// CursorColumn returns the display column of the cursor.
func (e *Editor) CursorColumn() int {
	return render.StringWidth(e.BeforeCursor())
}

// SetCursor sets the cursor position, clamping to valid range.
func (e *Editor) SetCursor(pos int) {
	e.cursor = max(0, min(pos, len(e.text)))
}

// Len returns the number of grapheme clusters.
func (e *Editor) Len() int {
	return len(e.text)
}

// Clear resets the editor to empty state.
func (e *Editor) Clear() {
	e.text = nil
	e.cursor = 0
}

// Set replaces the text and moves cursor to end.
func (e *Editor) Set(text string) {
	e.text = segment(text)
	e.cursor = len(e.text)
}

func (e *Editor) snapshot() editorState {
	return editorState{text: append([]string(nil), e.text...), cursor: e.cursor}
}

// SaveState saves the current state to the undo history.
// Call this before making changes that should be undoable.
func (e *Editor) SaveState() {
	if len(e.history) > 0 {
		last := e.history[len(e.history)-1]
		if last.cursor == e.cursor && strings.Join(last.text, "") == e.Text() {
			return
		}
	}

	e.history = append(e.history, e.snapshot())

	// a new change invalidates redo
	e.redoHistory = e.redoHistory[:0]
}

// Undo restores the previous state from the undo history.
// Returns true if undo was performed, false if history is empty.
func (e *Editor) Undo() bool {
	if len(e.history) == 0 {
		return false
	}
	e.redoHistory = append(e.redoHistory, e.snapshot())

	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.text, e.cursor = last.text, last.cursor
	return true
}

// Redo restores the next state from the redo history.
// Returns true if redo was performed, false if redo history is empty.
func (e *Editor) Redo() bool {
	if len(e.redoHistory) == 0 {
		return false
	}
	e.history = append(e.history, e.snapshot())

	last := e.redoHistory[len(e.redoHistory)-1]
	e.redoHistory = e.redoHistory[:len(e.redoHistory)-1]
	e.text, e.cursor = last.text, last.cursor
	return true
}

// BeforeCursor returns text before the cursor.
func (e *Editor) BeforeCursor() string {
	return strings.Join(e.text[:e.cursor], "")
}

// AfterCursor returns text from cursor to end.
func (e *Editor) AfterCursor() string {
	return strings.Join(e.text[e.cursor:], "")
}

// Insert adds s at the cursor position. The text is segmented again, so
// a combining mark typed after a letter joins that letter's cluster.
func (e *Editor) Insert(s string) {
	before := e.BeforeCursor() + s
	e.text = segment(before + e.AfterCursor())
	e.cursor = min(uniseg.GraphemeClusterCount(before), len(e.text))
}

// DeleteBackward removes the cluster before the cursor (backspace).
// Returns true if a cluster was deleted.
func (e *Editor) DeleteBackward() bool {
	if e.cursor == 0 {
		return false
	}
	e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
	e.cursor--
	return true
}

// DeleteForward removes the cluster at the cursor (delete).
// Returns true if a cluster was deleted.
func (e *Editor) DeleteForward() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
	return true
}

// Left moves cursor one cluster left.
// Returns true if cursor moved.
func (e *Editor) Left() bool {
	if e.cursor == 0 {
		return false
	}
	e.cursor--
	return true
}

// Right moves cursor one cluster right.
// Returns true if cursor moved.
func (e *Editor) Right() bool {
	if e.cursor >= len(e.text) {
		return false
	}
	e.cursor++
	return true
}

// Home moves cursor to beginning of line.
func (e *Editor) Home() {
	e.cursor = 0
}

// End moves cursor to end of line.
func (e *Editor) End() {
	e.cursor = len(e.text)
}

// charClass returns the class of a cluster for word motion purposes.
// 0 = whitespace, 1 = word char, 2 = punctuation/other
func charClass(cluster string) int {
	r := []rune(cluster)[0]
	switch {
	case unicode.IsSpace(r):
		return 0
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return 1
	}
	return 2
}

// wordBoundaryLeft finds the start of the previous word.
func (e *Editor) wordBoundaryLeft() int {
	if e.cursor == 0 {
		return 0
	}
	i := e.cursor - 1
	for i > 0 && charClass(e.text[i]) == 0 {
		i--
	}
	if i == 0 {
		return 0
	}
	class := charClass(e.text[i])
	for i > 0 && charClass(e.text[i-1]) == class {
		i--
	}
	return i
}

// wordBoundaryRight finds the start of the next word.
func (e *Editor) wordBoundaryRight() int {
	if e.cursor >= len(e.text) {
		return len(e.text)
	}
	i := e.cursor
	class := charClass(e.text[i])
	for i < len(e.text) && charClass(e.text[i]) == class {
		i++
	}
	for i < len(e.text) && charClass(e.text[i]) == 0 {
		i++
	}
	return i
}

// WordLeft moves cursor to the previous word boundary (Alt+B).
func (e *Editor) WordLeft() {
	e.cursor = e.wordBoundaryLeft()
}

// WordRight moves cursor to the next word boundary (Alt+F).
func (e *Editor) WordRight() {
	e.cursor = e.wordBoundaryRight()
}

// DeleteWordBackward deletes from cursor to previous word boundary (Ctrl+W).
func (e *Editor) DeleteWordBackward() {
	newPos := e.wordBoundaryLeft()
	e.text = append(e.text[:newPos], e.text[e.cursor:]...)
	e.cursor = newPos
}

// DeleteWordForward deletes from cursor to next word boundary (Alt+D).
func (e *Editor) DeleteWordForward() {
	newPos := e.wordBoundaryRight()
	e.text = append(e.text[:e.cursor], e.text[newPos:]...)
}

// KillToEnd deletes from cursor to end of line (Ctrl+K).
func (e *Editor) KillToEnd() {
	e.text = e.text[:e.cursor]
}

// KillToStart deletes from beginning to cursor (Ctrl+U).
func (e *Editor) KillToStart() {
	e.text = append([]string(nil), e.text[e.cursor:]...)
	e.cursor = 0
}

// Transpose swaps the cluster before cursor with the one at cursor (Ctrl+T).
// If at end, swaps the last two clusters.
func (e *Editor) Transpose() {
	if e.cursor == 0 || len(e.text) < 2 {
		return
	}
	pos := e.cursor
	if pos == len(e.text) {
		pos--
	}
	e.text[pos-1], e.text[pos] = e.text[pos], e.text[pos-1]
	if e.cursor < len(e.text) {
		e.cursor++
	}
}
