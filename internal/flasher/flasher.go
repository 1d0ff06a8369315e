// Package flasher drives one board from power-on through UMS flashing to boot.
package flasher

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"

	"github.com/gajzzs/umsflash/internal/bootloader"
	"github.com/gajzzs/umsflash/internal/config"
	"github.com/gajzzs/umsflash/internal/console"
	"github.com/gajzzs/umsflash/internal/platform"
	"github.com/gajzzs/umsflash/internal/transfer"
	"github.com/gajzzs/umsflash/internal/ums"
)

// Opener opens the serial transport to the board.
type Opener func(cfg console.SerialConfig) (console.Transport, error)

func openSerial(cfg console.SerialConfig) (console.Transport, error) {
	t, err := console.OpenSerial(cfg)
	if err != nil {
		return nil, err
	}
	return t, nil
}

type Flasher struct {
	cfg      *config.Config
	log      log.Interface
	open     Opener
	mounts   platform.MountLister
	progress io.Writer
	sync     func() error
	unmount  func(path string) error
}

type Option func(*Flasher)

func WithOpener(open Opener) Option {
	return func(f *Flasher) { f.open = open }
}

func WithMountLister(mounts platform.MountLister) Option {
	return func(f *Flasher) { f.mounts = mounts }
}

// WithProgress sends the copy progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(f *Flasher) { f.progress = w }
}

func WithSync(sync func() error) Option {
	return func(f *Flasher) { f.sync = sync }
}

// WithUnmount replaces the host unmount call.
func WithUnmount(unmount func(path string) error) Option {
	return func(f *Flasher) { f.unmount = unmount }
}

func New(cfg *config.Config, logger log.Interface, opts ...Option) *Flasher {
	f := &Flasher{
		cfg:     cfg,
		log:     logger,
		open:    openSerial,
		mounts:  platform.NewMountLister(),
		sync:    platform.Sync,
		unmount: platform.Unmount,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flash writes artifact to the board behind port. The serial port is closed
// before Flash returns, whatever the outcome.
func (f *Flasher) Flash(port, artifact string) error {
	if _, err := os.Stat(artifact); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	f.log.Infof("Writing %s to board with control port at %s", artifact, port)

	t, err := f.open(console.SerialConfig{
		Port:        port,
		BaudRate:    f.cfg.Serial.BaudRate,
		ReadTimeout: f.cfg.Serial.ReadTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			f.log.Warnf("closing %s: %v", port, cerr)
		}
	}()

	c := console.New(t, f.log, f.cfg.Verbose)
	hs := bootloader.New(c, f.cfg.Handshake, f.log)

	f.log.Info("Waiting for bootloader")
	if err := hs.AwaitPrompt(); err != nil {
		return err
	}
	if err := hs.RefreshPrompt(); err != nil {
		return err
	}

	baseline, err := f.mounts.Snapshot()
	if err != nil {
		return fmt.Errorf("list mounts: %w", err)
	}
	f.log.Debugf("Mounts before UMS: %s", baseline)

	if err := hs.EnableUMS(); err != nil {
		return err
	}

	resolver := ums.NewResolver(f.mounts, f.cfg.Resolver, f.log)
	target, err := resolver.Resolve(baseline)
	if err != nil {
		return err
	}

	f.log.Infof("Copying artifact to target partition %s", target)
	dst, err := transfer.Copy(artifact, target, transfer.Options{
		Progress: f.progress,
		Sync:     f.sync,
	})
	if err != nil {
		return err
	}
	f.log.Infof("Copy complete: %s", dst)

	err = transfer.Unmount(target, transfer.UnmountOptions{
		Attempts: f.cfg.Transfer.UnmountAttempts,
		Backoff:  f.cfg.Transfer.UnmountBackoff,
		Force:    f.cfg.Transfer.Force,
		Unmount:  f.unmount,
	}, f.log)
	if err != nil {
		return err
	}

	if err := hs.MarkTransferred(); err != nil {
		return err
	}
	return hs.ExitAndBoot()
}
