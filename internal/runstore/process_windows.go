//go:build windows

package runstore

import "os"

// FindProcess opens a handle on Windows and fails when no such process exists.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}
