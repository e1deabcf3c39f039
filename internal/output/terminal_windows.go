//go:build windows

package output

import (
	"syscall"
	"unsafe"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procScreenBufferInfo = kernel32.NewProc("GetConsoleScreenBufferInfo")
)

type coord struct {
	x, y int16
}

type smallRect struct {
	left, top, right, bottom int16
}

// consoleScreenBufferInfo mirrors CONSOLE_SCREEN_BUFFER_INFO; the window
// rect gives the visible width, not the buffer size.
type consoleScreenBufferInfo struct {
	size              coord
	cursorPosition    coord
	attributes        uint16
	window            smallRect
	maximumWindowSize coord
}

func getTerminalWidth() int {
	if w := envColumns(); w > 0 {
		return w
	}

	handle, err := syscall.GetStdHandle(syscall.STD_OUTPUT_HANDLE)
	if err != nil {
		return defaultWidth
	}

	var info consoleScreenBufferInfo
	ret, _, _ := procScreenBufferInfo.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return defaultWidth
	}

	if width := int(info.window.right-info.window.left) + 1; width > 0 {
		return width
	}
	return defaultWidth
}
