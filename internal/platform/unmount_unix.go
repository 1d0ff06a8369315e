//go:build linux || darwin
// +build linux darwin

package platform

import "golang.org/x/sys/unix"

// Unmount detaches the filesystem mounted at path.
func Unmount(path string) error {
	return unix.Unmount(path, 0)
}
