//go:build windows

package probe

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"fpsmon/core"
)

// overlayModuleLoaded walks the target's loaded modules looking for the
// overlay hook DLL. Returns an error when the snapshot cannot be taken,
// which includes ERROR_ACCESS_DENIED under anti-cheat protection.
func overlayModuleLoaded(pid uint32) (bool, error) {
	snap, err := windows.CreateToolhelp32Snapshot(
		windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, pid)
	if err != nil {
		return false, err
	}
	defer windows.CloseHandle(snap)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Module32First(snap, &entry); err != nil {
		return false, err
	}
	for {
		name := strings.ToLower(windows.UTF16ToString(entry.Module[:]))
		if name == core.OverlayModuleName {
			return true, nil
		}
		if err := windows.Module32Next(snap, &entry); err != nil {
			return false, nil // end of list
		}
	}
}
