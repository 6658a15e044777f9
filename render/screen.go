package render

import "io"

// Screen is a canvas bound to an output stream. Drawing happens on the
// canvas; Show pushes the whole frame out at once.
type Screen struct {
	*Canvas
	out      io.Writer
	cursorX  int
	cursorY  int
	cursorOn bool
}

// NewScreen creates a width x height screen writing frames to out.
func NewScreen(out io.Writer, width, height int) *Screen {
	return &Screen{Canvas: NewCanvas(width, height), out: out}
}

// Size returns the screen dimensions in cells.
func (s *Screen) Size() (int, int) {
	return s.Width(), s.Height()
}

// Resize replaces the canvas with an empty one of the new size.
func (s *Screen) Resize(width, height int) {
	s.Canvas = NewCanvas(width, height)
}

// ShowCursor places a visible cursor at x, y after the next Show.
func (s *Screen) ShowCursor(x, y int) {
	s.cursorX, s.cursorY, s.cursorOn = x, y, true
}

// HideCursor hides the cursor after the next Show.
func (s *Screen) HideCursor() {
	s.cursorOn = false
}

// Show writes the current frame to the output.
func (s *Screen) Show() error {
	frame := s.Render()
	if s.cursorOn {
		frame += MoveCursor(s.cursorX, s.cursorY) + CursorShow
	} else {
		frame += CursorHide
	}
	_, err := io.WriteString(s.out, frame)
	return err
}
