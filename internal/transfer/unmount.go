package transfer

import (
	"time"

	"github.com/apex/log"

	"github.com/gajzzs/umsflash/internal/platform"
)

type UnmountOptions struct {
	Attempts int
	// Backoff grows linearly: the wait after failure n is n*Backoff.
	Backoff time.Duration
	// Force gives up after the first failure and reports success.
	Force bool

	// Unmount is platform.Unmount when nil; Sleep is time.Sleep when nil.
	Unmount func(path string) error
	Sleep   func(time.Duration)
}

// Unmount releases the host's mount of mountpoint so the board can safely
// leave UMS mode.
func Unmount(mountpoint string, opts UnmountOptions, logger log.Interface) error {
	unmount := opts.Unmount
	if unmount == nil {
		unmount = platform.Unmount
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	var err error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if err = unmount(mountpoint); err == nil {
			logger.Infof("Unmounted %s", mountpoint)
			return nil
		}
		logger.Warnf("Failed to unmount %s: %v", mountpoint, err)
		if opts.Force {
			logger.Warn("Forcing UMS exit with the volume still mounted")
			return nil
		}
		if attempt < opts.Attempts {
			sleep(time.Duration(attempt) * opts.Backoff)
		}
	}
	return &Error{Op: "unmount", Path: mountpoint, Err: err}
}
