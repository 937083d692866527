//go:build !windows

package probe

// Main-window liveness only exists on Windows.
func hasMainWindow(pid uint32) bool {
	return false
}
