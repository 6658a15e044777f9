//go:build linux

package render

import "golang.org/x/sys/unix"

// termios requests used by Terminal on Linux.
const (
	ioctlGetTermios = unix.TCGETS
	ioctlSetTermios = unix.TCSETS
)
