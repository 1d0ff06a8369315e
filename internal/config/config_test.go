package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, time.Second, cfg.Serial.ReadTimeout)
	assert.Equal(t, "FEC [PRIME], usb_ether", cfg.Handshake.BannerMatch)
	assert.Equal(t, "=>", cfg.Handshake.PromptMatch)
	assert.Equal(t, 5, cfg.Handshake.InterruptCount)
	assert.Equal(t, 50*time.Millisecond, cfg.Handshake.InterruptDelay)
	assert.Equal(t, "ums 0 mmc 0", cfg.Handshake.UMSCommand)
	assert.Equal(t, "boot", cfg.Handshake.BootCommand)
	assert.Equal(t, "-m4.dtb", cfg.Resolver.MarkerSuffix)
	assert.Equal(t, 3, cfg.Resolver.Attempts)
	assert.Equal(t, 10, cfg.Transfer.UnmountAttempts)
	assert.Equal(t, time.Second, cfg.Transfer.UnmountBackoff)
	assert.False(t, cfg.Transfer.Force)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
resolver:
  marker_suffix: "-a7.dtb"
  attempts: 6
  poll_interval: 250ms
handshake:
  ums_command: "ums 0 mmc 1"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "-a7.dtb", cfg.Resolver.MarkerSuffix)
	assert.Equal(t, 6, cfg.Resolver.Attempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Resolver.PollInterval)
	assert.Equal(t, "ums 0 mmc 1", cfg.Handshake.UMSCommand)
	// untouched keys keep their defaults
	assert.Equal(t, "boot", cfg.Handshake.BootCommand)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resolver:\n  attempts: 0\n  marker_suffix: \"\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver.attempts")
	assert.Contains(t, err.Error(), "resolver.marker_suffix")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [unterminated"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadUnmountSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "transfer:\n  unmount_attempts: 2\n  unmount_backoff: 300ms\n  force: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Transfer.UnmountAttempts)
	assert.Equal(t, 300*time.Millisecond, cfg.Transfer.UnmountBackoff)
	assert.True(t, cfg.Transfer.Force)
	assert.True(t, cfg.Transfer.Progress)
}

func TestValidateRejectsNoUnmountAttempts(t *testing.T) {
	cfg := Defaults()
	cfg.Transfer.UnmountAttempts = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer.unmount_attempts")
}
