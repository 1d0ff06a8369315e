//go:build !linux
// +build !linux

package platform

func describeDevice(devPath string) (model string, removable bool) {
	return "", false
}
