package render

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Terminal handles raw mode and screen control.
type Terminal struct {
	fd       int
	original unix.Termios
}

// NewTerminal creates a terminal controller for the given file.
func NewTerminal(f *os.File) (*Terminal, error) {
	fd := int(f.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	return &Terminal{fd: fd, original: *termios}, nil
}

// EnterRawMode puts the terminal into raw mode for direct character input.
// Reads return after at most a tenth of a second so the caller can poll
// for resize notifications between keys.
func (t *Terminal) EnterRawMode() error {
	raw := t.original
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 1
	return unix.IoctlSetTermios(t.fd, ioctlSetTermios, &raw)
}

// RestoreMode restores the original terminal mode.
func (t *Terminal) RestoreMode() error {
	return unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.original)
}

// Suspend gives the terminal back to the user: original mode, main screen.
func (t *Terminal) Suspend(out *os.File) error {
	ExitAltScreen(out)
	return t.RestoreMode()
}

// Resume takes the terminal over again after Suspend.
func (t *Terminal) Resume(out *os.File) error {
	EnterAltScreen(out)
	return t.EnterRawMode()
}

const (
	ClearScreen    = "\033[2J"
	ClearLine      = "\033[2K"
	CursorHome     = "\033[H"
	CursorHide     = "\033[?25l"
	CursorShow     = "\033[?25h"
	AltScreenEnter = "\033[?1049h"
	AltScreenExit  = "\033[?1049l"
)

// MoveCursor returns the sequence placing the cursor at column x, row y
// (both zero based).
func MoveCursor(x, y int) string {
	return fmt.Sprintf("\033[%d;%dH", y+1, x+1)
}

// EnterAltScreen switches to the alternate screen buffer.
func EnterAltScreen(f *os.File) {
	f.WriteString(AltScreenEnter + CursorHide + ClearScreen)
}

// ExitAltScreen returns to the main screen buffer.
func ExitAltScreen(f *os.File) {
	f.WriteString(CursorShow + AltScreenExit)
}
