//go:build darwin

package render

import "golang.org/x/sys/unix"

// termios requests used by Terminal on macOS and the BSDs it derives from.
const (
	ioctlGetTermios = unix.TIOCGETA
	ioctlSetTermios = unix.TIOCSETA
)
