package ums

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/gajzzs/umsflash/internal/config"
	"github.com/gajzzs/umsflash/internal/platform"
)

// ErrNoTarget means no newly mounted volume carried the board marker file
// within the polling budget.
var ErrNoTarget = errors.New("no target partition found")

// Resolver finds the volume the bootloader exposed over UMS by diffing mount
// snapshots and looking for the board's marker file at the volume root.
type Resolver struct {
	mounts   platform.MountLister
	suffix   string
	attempts int
	interval time.Duration
	log      log.Interface

	readDir func(string) ([]fs.DirEntry, error)
	sleep   func(time.Duration)
}

func NewResolver(mounts platform.MountLister, cfg config.ResolverConfig, logger log.Interface) *Resolver {
	return &Resolver{
		mounts:   mounts,
		suffix:   cfg.MarkerSuffix,
		attempts: cfg.Attempts,
		interval: cfg.PollInterval,
		log:      logger,
		readDir:  os.ReadDir,
		sleep:    time.Sleep,
	}
}

// Resolve polls for a new mount point holding the marker file. Candidates are
// inspected in lexicographic order and the first match wins.
func (r *Resolver) Resolve(baseline platform.Snapshot) (string, error) {
	for attempt := 1; attempt <= r.attempts; attempt++ {
		current, err := r.mounts.Snapshot()
		if err != nil {
			return "", fmt.Errorf("list mounts: %w", err)
		}

		candidates := current.Added(baseline)
		r.log.WithFields(log.Fields{
			"attempt":    attempt,
			"candidates": strings.Join(candidates, ","),
		}).Debug("Scanning new mount points")

		for _, candidate := range candidates {
			if r.hasMarker(candidate) {
				r.log.Infof("Target partition: %s", candidate)
				return candidate, nil
			}
		}

		if attempt < r.attempts {
			r.sleep(r.interval)
		}
	}
	return "", fmt.Errorf("%w with a *%s file after %d attempts", ErrNoTarget, r.suffix, r.attempts)
}

func (r *Resolver) hasMarker(mountpoint string) bool {
	entries, err := r.readDir(mountpoint)
	if err != nil {
		r.log.Warnf("failed to get contents of %s: %v", mountpoint, err)
		return false
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), r.suffix) {
			r.log.Debugf("Found %s", filepath.Join(mountpoint, entry.Name()))
			return true
		}
	}
	return false
}
