//go:build linux
// +build linux

package platform

import (
	"os"
	"path/filepath"
	"strings"
)

var sysBlockDir = "/sys/block"

// describeDevice fills in what sysfs knows about the disk behind a partition.
// U-Boot's UMS gadget shows up as vendor "Linux", model "UMS disk 0".
func describeDevice(devPath string) (model string, removable bool) {
	if !strings.HasPrefix(devPath, "/dev/") {
		return "", false
	}
	disk := diskName(filepath.Base(devPath))
	blockDev := filepath.Join(sysBlockDir, disk)

	if data, err := os.ReadFile(filepath.Join(blockDev, "removable")); err == nil {
		removable = strings.TrimSpace(string(data)) == "1"
	}

	vendor := readAttr(filepath.Join(blockDev, "device", "vendor"))
	model = readAttr(filepath.Join(blockDev, "device", "model"))
	if vendor != "" && model != "" {
		return vendor + " " + model, removable
	}
	return model, removable
}

// diskName maps a partition name to its disk: sdb1 -> sdb, mmcblk0p2 -> mmcblk0.
func diskName(part string) string {
	if _, err := os.Stat(filepath.Join(sysBlockDir, part)); err == nil {
		return part
	}
	trimmed := strings.TrimRight(part, "0123456789")
	if strings.HasSuffix(trimmed, "p") && len(trimmed) > 1 {
		candidate := strings.TrimSuffix(trimmed, "p")
		if _, err := os.Stat(filepath.Join(sysBlockDir, candidate)); err == nil {
			return candidate
		}
	}
	return trimmed
}

func readAttr(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
