package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/gajzzs/umsflash/internal/platform"
)

// Error is a failed copy or sync step.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transfer %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	// Progress receives a byte progress bar. Nil disables it.
	Progress io.Writer
	// Sync is the host-wide flush barrier; platform.Sync when nil.
	Sync func() error
}

// Copy writes artifact into mountpoint under its base name and flushes it to
// the device. It returns the destination path.
func Copy(artifact, mountpoint string, opts Options) (string, error) {
	dst := filepath.Join(mountpoint, filepath.Base(artifact))

	in, err := os.Open(artifact)
	if err != nil {
		return "", &Error{Op: "open", Path: artifact, Err: err}
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", &Error{Op: "stat", Path: artifact, Err: err}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", &Error{Op: "create", Path: dst, Err: err}
	}
	defer out.Close()

	var w io.Writer = out
	if opts.Progress != nil {
		bar := progressbar.NewOptions64(info.Size(),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Copying "+filepath.Base(artifact)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(opts.Progress) }),
		)
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, in); err != nil {
		return "", &Error{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Sync(); err != nil {
		return "", &Error{Op: "fsync", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return "", &Error{Op: "close", Path: dst, Err: err}
	}

	sync := opts.Sync
	if sync == nil {
		sync = platform.Sync
	}
	// USB mass storage can ack a flush before the data is on the card; sync twice.
	for i := 0; i < 2; i++ {
		if err := sync(); err != nil {
			return "", &Error{Op: "sync", Path: mountpoint, Err: err}
		}
	}
	return dst, nil
}
