package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// maxCollisions bounds the same-second suffix search.
const maxCollisions = 1000

// Manager creates, lists, restores and prunes snapshots.
type Manager struct {
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used to name snapshots.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new snapshot Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot copies path to a timestamped sibling, preserving its mode.
func (m *Manager) Snapshot(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrNotRegularFile, "%s", path)
	}

	name := Name{Original: filepath.Base(path), Time: m.now().Truncate(time.Second)}
	dst, err := freeName(filepath.Dir(path), &name)
	if err != nil {
		return nil, err
	}

	if err := fileutil.AtomicCopyFile(path, dst); err != nil {
		return nil, errors.Wrapf(err, "snapshotting %s", path)
	}

	return &Snapshot{
		Name:         name,
		Path:         dst,
		OriginalPath: path,
		Size:         info.Size(),
	}, nil
}

// freeName picks the first unused sequence number for name in dir.
func freeName(dir string, name *Name) (string, error) {
	for seq := 0; seq < maxCollisions; seq++ {
		name.Seq = seq
		candidate := filepath.Join(dir, name.String())
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", errors.Wrapf(err, "checking %s", candidate)
		}
	}
	return "", errors.Newf("too many snapshots of %s at %s", name.Original, name.Time.Format(TimeLayout))
}

// List returns the snapshots of path, newest first. A file without
// snapshots yields an empty list.
func (m *Manager) List(path string) ([]Snapshot, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	var snaps []Snapshot
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name, ok := ParseName(e.Name())
		if !ok || name.Original != base {
			continue
		}
		snap, err := snapshotOf(dir, e, name)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	slices.SortFunc(snaps, newer)
	return snaps, nil
}

// ListTree returns every snapshot below dir, grouped by original path and
// newest first within a group. A missing dir yields an empty list.
func (m *Manager) ListTree(dir string) ([]Snapshot, error) {
	var snaps []Snapshot
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name, ok := ParseName(d.Name())
		if !ok {
			return nil
		}
		snap, err := snapshotOf(filepath.Dir(p), d, name)
		if err != nil {
			return err
		}
		snaps = append(snaps, snap)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}

	slices.SortFunc(snaps, func(a, b Snapshot) int {
		if c := strings.Compare(a.OriginalPath, b.OriginalPath); c != 0 {
			return c
		}
		return newer(a, b)
	})
	return snaps, nil
}

func snapshotOf(dir string, d fs.DirEntry, name Name) (Snapshot, error) {
	info, err := d.Info()
	if err != nil {
		return Snapshot{}, errors.Wrapf(err, "stat %s", d.Name())
	}
	return Snapshot{
		Name:         name,
		Path:         filepath.Join(dir, d.Name()),
		OriginalPath: filepath.Join(dir, name.Original),
		Size:         info.Size(),
	}, nil
}

// Find returns the snapshot of path with the given ID. An empty ID selects
// the newest snapshot.
func (m *Manager) Find(path, id string) (*Snapshot, error) {
	snaps, err := m.List(path)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errors.Wrapf(ErrNoSnapshots, "%s", path)
	}
	if id == "" {
		return &snaps[0], nil
	}

	id = strings.TrimPrefix(id, filepath.Base(path)+Marker)
	for i := range snaps {
		if snaps[i].ID() == id {
			return &snaps[i], nil
		}
	}
	return nil, errors.Wrapf(ErrSnapshotNotFound, "%s for %s", id, path)
}

// Restore copies a snapshot back over path. An empty id restores the newest
// snapshot. Differing current content is snapshotted first so a restore can
// itself be undone.
func (m *Manager) Restore(path, id string) (*RestoreResult, error) {
	snap, err := m.Find(path, id)
	if err != nil {
		return nil, err
	}

	res := &RestoreResult{Restored: *snap}

	same, err := fileutil.SameContent(snap.Path, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, errors.Wrapf(err, "comparing %s", path)
	case same:
		return res, nil
	default:
		saved, err := m.Snapshot(path)
		if err != nil {
			return nil, err
		}
		res.Saved = saved
	}

	if err := fileutil.AtomicCopyFile(snap.Path, path); err != nil {
		return nil, errors.Wrapf(err, "restoring %s", path)
	}
	return res, nil
}

// Prune removes all but the newest keep snapshots of path and returns the
// removed snapshots.
func (m *Manager) Prune(path string, keep int) ([]Snapshot, error) {
	if keep < 0 {
		return nil, errors.New("keep must be non-negative")
	}

	snaps, err := m.List(path)
	if err != nil {
		return nil, err
	}
	return removeOlder(snaps, keep)
}

// PruneTree applies Prune to every file below dir that has snapshots.
func (m *Manager) PruneTree(dir string, keep int) ([]Snapshot, error) {
	if keep < 0 {
		return nil, errors.New("keep must be non-negative")
	}

	snaps, err := m.ListTree(dir)
	if err != nil {
		return nil, err
	}

	var removed []Snapshot
	for start := 0; start < len(snaps); {
		end := start + 1
		for end < len(snaps) && snaps[end].OriginalPath == snaps[start].OriginalPath {
			end++
		}
		r, err := removeOlder(snaps[start:end], keep)
		removed = append(removed, r...)
		if err != nil {
			return removed, err
		}
		start = end
	}
	return removed, nil
}

func removeOlder(snaps []Snapshot, keep int) ([]Snapshot, error) {
	if len(snaps) <= keep {
		return nil, nil
	}
	var removed []Snapshot
	for _, s := range snaps[keep:] {
		if err := os.Remove(s.Path); err != nil {
			return removed, errors.Wrapf(err, "removing snapshot %s", s.Path)
		}
		removed = append(removed, s)
	}
	return removed, nil
}

// FormatAge renders how long ago a snapshot was taken relative to now.
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	default:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	}
}
