//go:build !windows

package output

import (
	"syscall"
	"unsafe"
)

// winsize mirrors the kernel struct returned by the TIOCGWINSZ ioctl.
type winsize struct {
	rows    uint16
	cols    uint16
	xPixels uint16
	yPixels uint16
}

func getTerminalWidth() int {
	if w := envColumns(); w > 0 {
		return w
	}

	var ws winsize
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL,
		uintptr(syscall.Stdout),
		uintptr(syscall.TIOCGWINSZ),
		uintptr(unsafe.Pointer(&ws)))
	if errno == 0 && ws.cols > 0 {
		return int(ws.cols)
	}

	// Not a terminal (piped output)
	return defaultWidth
}
