//go:build linux
// +build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSysBlock(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	old := sysBlockDir
	sysBlockDir = root
	t.Cleanup(func() { sysBlockDir = old })

	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("sdb/removable", "1\n")
	write("sdb/device/vendor", "Linux   \n")
	write("sdb/device/model", "UMS disk 0      \n")
	write("mmcblk0/removable", "0\n")
	write("mmcblk0/device/model", "")
}

func TestDescribeDevice_UMSGadget(t *testing.T) {
	fakeSysBlock(t)

	model, removable := describeDevice("/dev/sdb1")
	assert.Equal(t, "Linux UMS disk 0", model)
	assert.True(t, removable)
}

func TestDescribeDevice_MMCPartition(t *testing.T) {
	fakeSysBlock(t)

	model, removable := describeDevice("/dev/mmcblk0p2")
	assert.Equal(t, "", model)
	assert.False(t, removable)
}

func TestDescribeDevice_NotADevice(t *testing.T) {
	fakeSysBlock(t)

	model, removable := describeDevice("tmpfs")
	assert.Equal(t, "", model)
	assert.False(t, removable)
}

func TestDiskName(t *testing.T) {
	fakeSysBlock(t)

	assert.Equal(t, "sdb", diskName("sdb1"))
	assert.Equal(t, "sdb", diskName("sdb"))
	assert.Equal(t, "mmcblk0", diskName("mmcblk0p2"))
	assert.Equal(t, "sdc", diskName("sdc3"))
}
