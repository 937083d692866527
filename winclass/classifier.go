// Package winclass decides which window, if any, is the active fullscreen or
// borderless-fullscreen surface, and therefore which process to trace.
//
// The heuristic itself is pure: it operates on Window snapshots taken by a
// platform enumerator, so the classification rules are testable without a
// desktop present.
package winclass

import (
	"strings"

	"fpsmon/core"
)

// Kind is the classification of a window snapshot.
type Kind int

const (
	// KindNone marks a window that does not qualify for capture.
	KindNone Kind = iota

	// KindFullscreen marks a window whose client rectangle exactly covers
	// its monitor with no caption or sizable border.
	KindFullscreen

	// KindBorderless marks a focused borderless window that nearly covers
	// its monitor (borderless-fullscreen game heuristic).
	KindBorderless
)

func (k Kind) String() string {
	switch k {
	case KindFullscreen:
		return "fullscreen"
	case KindBorderless:
		return "borderless"
	default:
		return "none"
	}
}

// Rect is a screen-space rectangle in pixels.
type Rect struct {
	Left, Top, Right, Bottom int32
}

// Width returns the rectangle width in pixels.
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns the rectangle height in pixels.
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Area returns the rectangle area in square pixels; degenerate rectangles
// report 0.
func (r Rect) Area() int64 {
	w, h := r.Width(), r.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return int64(w) * int64(h)
}

// Window is a point-in-time snapshot of one visible top-level window.
type Window struct {
	Handle  uintptr
	PID     uint32
	Class   string
	Visible bool

	// Focused is true when the window holds OS input focus.
	Focused bool

	// Maximized mirrors the OS "zoomed" state. A maximized bordered window
	// can cover most of a monitor without being a game.
	Maximized bool

	// HasCaption and HasSizableBorder reflect the title-bar and resizable
	// border style bits.
	HasCaption       bool
	HasSizableBorder bool

	// Client is the client rectangle translated to screen coordinates.
	Client Rect

	// Monitor is the bounding rectangle of the nearest monitor.
	Monitor Rect
}

// Classify applies the geometric fullscreen/borderless heuristic to a single
// window snapshot. Process-identity rules (denylist, own PID, system PIDs)
// are applied separately by the Scanner.
func Classify(w Window) Kind {
	if !w.Visible {
		return KindNone
	}
	if w.Client.Width() < core.MinClientWidth || w.Client.Height() < core.MinClientHeight {
		return KindNone
	}
	if farOutsideMonitor(w.Client, w.Monitor) {
		return KindNone
	}

	borderless := !w.HasCaption && !w.HasSizableBorder
	if !borderless {
		return KindNone
	}

	if w.Client == w.Monitor {
		return KindFullscreen
	}
	if w.Focused && !w.Maximized && areaRatio(w.Client, w.Monitor) >= core.BorderlessAreaRatio {
		return KindBorderless
	}
	return KindNone
}

// farOutsideMonitor reports whether the client rectangle extends past the
// monitor bounds by more than the tolerated offset. Stale windows parked at
// coordinates like -32000 fail this check.
func farOutsideMonitor(client, monitor Rect) bool {
	const off = core.MaxMonitorOffsetPx
	return client.Left < monitor.Left-off ||
		client.Top < monitor.Top-off ||
		client.Right > monitor.Right+off ||
		client.Bottom > monitor.Bottom+off
}

// areaRatio returns client area over monitor area, 0 when the monitor
// rectangle is degenerate.
func areaRatio(client, monitor Rect) float64 {
	ma := monitor.Area()
	if ma == 0 {
		return 0
	}
	return float64(client.Area()) / float64(ma)
}

// Shell and system surfaces that must never be selected as capture targets,
// matched case-insensitively.
var (
	denylistedProcesses = map[string]struct{}{
		"explorer.exe":                  {},
		"dwm.exe":                       {},
		"searchhost.exe":                {},
		"textinputhost.exe":             {},
		"applicationframehost.exe":      {},
		"shellexperiencehost.exe":       {},
		"startmenuexperiencehost.exe":   {},
		"lockapp.exe":                   {},
	}

	denylistedClasses = map[string]struct{}{
		"shell_traywnd":              {},
		"workerw":                    {},
		"progman":                    {},
		"applicationframewindow":     {},
		"windows.ui.core.corewindow": {},
		"ime":                        {},
	}
)

// Denylisted reports whether a window belongs to a known shell/system
// process or window class.
func Denylisted(processName, class string) bool {
	if _, ok := denylistedProcesses[strings.ToLower(processName)]; ok {
		return true
	}
	_, ok := denylistedClasses[strings.ToLower(class)]
	return ok
}
