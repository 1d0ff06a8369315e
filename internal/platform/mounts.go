package platform

import (
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// Partition is a mounted filesystem as reported by the host.
type Partition struct {
	Device     string
	Mountpoint string
	Fstype     string
	Opts       []string
	Model      string
	Removable  bool
}

// Snapshot is the set of mount points present at one instant.
type Snapshot struct {
	paths map[string]struct{}
}

func NewSnapshot(paths ...string) Snapshot {
	s := Snapshot{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if p == "" {
			continue
		}
		s.paths[p] = struct{}{}
	}
	return s
}

func (s Snapshot) Len() int {
	return len(s.paths)
}

func (s Snapshot) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Paths returns the mount points in lexicographic order.
func (s Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.paths))
	for p := range s.paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Added returns the mount points in s that are absent from baseline, sorted.
func (s Snapshot) Added(baseline Snapshot) []string {
	var added []string
	for p := range s.paths {
		if !baseline.Contains(p) {
			added = append(added, p)
		}
	}
	sort.Strings(added)
	return added
}

func (s Snapshot) String() string {
	return "{" + strings.Join(s.Paths(), ", ") + "}"
}

// MountLister captures point-in-time mount snapshots
type MountLister interface {
	Snapshot() (Snapshot, error)
}

// DiskMounts lists mounted partitions through gopsutil.
type DiskMounts struct {
	// All includes virtual filesystems (proc, sysfs, tmpfs...).
	All bool
}

func NewMountLister() *DiskMounts {
	return &DiskMounts{}
}

func (dm *DiskMounts) Partitions() ([]Partition, error) {
	stats, err := disk.Partitions(dm.All)
	if err != nil {
		return nil, err
	}

	partitions := make([]Partition, 0, len(stats))
	for _, stat := range stats {
		if stat.Mountpoint == "" {
			continue
		}
		model, removable := describeDevice(stat.Device)
		partitions = append(partitions, Partition{
			Device:     stat.Device,
			Mountpoint: stat.Mountpoint,
			Fstype:     stat.Fstype,
			Opts:       stat.Opts,
			Model:      model,
			Removable:  removable,
		})
	}
	return partitions, nil
}

func (dm *DiskMounts) Snapshot() (Snapshot, error) {
	partitions, err := dm.Partitions()
	if err != nil {
		return Snapshot{}, err
	}
	paths := make([]string, 0, len(partitions))
	for _, p := range partitions {
		paths = append(paths, p.Mountpoint)
	}
	return NewSnapshot(paths...), nil
}
