//go:build !linux && !darwin
// +build !linux,!darwin

package platform

import (
	"fmt"
	"os/exec"
	"strings"
)

// Unmount detaches the filesystem mounted at path with the host's umount tool.
func Unmount(path string) error {
	out, err := exec.Command("umount", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("umount %s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	return nil
}
