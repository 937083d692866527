//go:build windows

package probe

import (
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindow                = user32.NewProc("GetWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

const gwOwner = 4

// Shared state for the EnumWindows callback; the callback is created once
// because syscall.NewCallback allocations are never released.
var (
	mainWinMu    sync.Mutex
	mainWinPID   uint32
	mainWinFound bool

	mainWinCallback = syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		// A main window is unowned; owned windows are dialogs/tool windows.
		if owner, _, _ := procGetWindow.Call(hwnd, gwOwner); owner != 0 {
			return 1
		}
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		if pid == mainWinPID {
			mainWinFound = true
			return 0 // stop enumeration
		}
		return 1
	})
)

// hasMainWindow reports whether the PID owns a visible unowned top-level
// window.
func hasMainWindow(pid uint32) bool {
	mainWinMu.Lock()
	defer mainWinMu.Unlock()

	mainWinPID = pid
	mainWinFound = false
	procEnumWindows.Call(mainWinCallback, 0)
	return mainWinFound
}
