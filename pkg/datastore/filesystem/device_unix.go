// +build !windows,!plan9

package filesystem

import (
	"os"
	"syscall"
)

// deviceID returns the device a file resides on, when the underlying filesystem tells.
func deviceID(info os.FileInfo) (uint64, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return 0, false
	}
	return uint64(st.Dev), true
}
