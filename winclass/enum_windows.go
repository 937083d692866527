//go:build windows

package winclass

import (
	"sync"
	"syscall"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows              = user32.NewProc("EnumWindows")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsZoomed                 = user32.NewProc("IsZoomed")
	procGetClientRect            = user32.NewProc("GetClientRect")
	procClientToScreen           = user32.NewProc("ClientToScreen")
	procGetWindowLongW           = user32.NewProc("GetWindowLongW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procMonitorFromWindow        = user32.NewProc("MonitorFromWindow")
	procGetMonitorInfoW          = user32.NewProc("GetMonitorInfoW")
)

const (
	gwlStyle       = -16
	wsCaption      = 0x00C00000
	wsThickFrame   = 0x00040000
	monitorNearest = 2
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type winPoint struct {
	X, Y int32
}

type monitorInfo struct {
	CbSize    uint32
	RcMonitor winRect
	RcWork    winRect
	DwFlags   uint32
}

// Enumeration state shared with the EnumWindows callback. syscall.NewCallback
// may only be invoked a limited number of times per process, so one callback
// is created up front and the state is guarded by a mutex.
var (
	enumMu         sync.Mutex
	enumWindowsOut *[]Window
	enumForeground uintptr

	enumCallback = syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if w, ok := snapshotWindow(hwnd, enumForeground); ok {
			*enumWindowsOut = append(*enumWindowsOut, w)
		}
		return 1 // continue enumeration
	})
)

// enumerateWindows snapshots every visible top-level window. A failure while
// querying an individual window skips that window only; the scan itself
// never fails.
func enumerateWindows(logger *zap.Logger) []Window {
	enumMu.Lock()
	defer enumMu.Unlock()

	snaps := make([]Window, 0, 32)
	enumWindowsOut = &snaps
	fg, _, _ := procGetForegroundWindow.Call()
	enumForeground = fg

	ret, _, err := procEnumWindows.Call(enumCallback, 0)
	if ret == 0 {
		logger.Debug("EnumWindows failed", zap.Error(err))
	}

	enumWindowsOut = nil
	return snaps
}

// snapshotWindow builds a Window snapshot for one handle. ok is false when
// the window is invisible or any geometry query fails.
func snapshotWindow(hwnd, foreground uintptr) (Window, bool) {
	if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
		return Window{}, false
	}

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return Window{}, false
	}

	client, ok := clientRectOnScreen(hwnd)
	if !ok {
		return Window{}, false
	}

	monitor, ok := monitorRect(hwnd)
	if !ok {
		return Window{}, false
	}

	style, _, _ := procGetWindowLongW.Call(hwnd, uintptr(uint32(int32(gwlStyle))))
	zoomed, _, _ := procIsZoomed.Call(hwnd)

	return Window{
		Handle:           hwnd,
		PID:              pid,
		Class:            className(hwnd),
		Visible:          true,
		Focused:          hwnd == foreground,
		Maximized:        zoomed != 0,
		HasCaption:       uint32(style)&wsCaption == wsCaption,
		HasSizableBorder: uint32(style)&wsThickFrame == wsThickFrame,
		Client:           client,
		Monitor:          monitor,
	}, true
}

// clientRectOnScreen returns the client rectangle translated to screen
// coordinates.
func clientRectOnScreen(hwnd uintptr) (Rect, bool) {
	var rc winRect
	if ret, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&rc))); ret == 0 {
		return Rect{}, false
	}

	origin := winPoint{}
	if ret, _, _ := procClientToScreen.Call(hwnd, uintptr(unsafe.Pointer(&origin))); ret == 0 {
		return Rect{}, false
	}

	return Rect{
		Left:   origin.X,
		Top:    origin.Y,
		Right:  origin.X + rc.Right,
		Bottom: origin.Y + rc.Bottom,
	}, true
}

// monitorRect returns the bounding rectangle of the monitor nearest to the
// window.
func monitorRect(hwnd uintptr) (Rect, bool) {
	hmon, _, _ := procMonitorFromWindow.Call(hwnd, monitorNearest)
	if hmon == 0 {
		return Rect{}, false
	}

	mi := monitorInfo{CbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
	if ret, _, _ := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&mi))); ret == 0 {
		return Rect{}, false
	}

	return Rect{
		Left:   mi.RcMonitor.Left,
		Top:    mi.RcMonitor.Top,
		Right:  mi.RcMonitor.Right,
		Bottom: mi.RcMonitor.Bottom,
	}, true
}

func className(hwnd uintptr) string {
	var buf [256]uint16
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
