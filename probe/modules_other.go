//go:build !windows

package probe

import "errors"

var errModulesUnsupported = errors.New("module enumeration not supported on this platform")

func overlayModuleLoaded(pid uint32) (bool, error) {
	return false, errModulesUnsupported
}
