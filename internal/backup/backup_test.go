package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudekit/internal/errors"
)

// fixedClock returns a clock that advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

var t0 = time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		orig string
		seq  int
	}{
		{"foo.json.backup_20260101_120000", true, "foo.json", 0},
		{"CLAUDE.md.backup_20260101_120000.2", true, "CLAUDE.md", 2},
		{"foo.json", false, "", 0},
		{".backup_20260101_120000", false, "", 0},
		{"foo.backup_2026", false, "", 0},
		{"foo.backup_20261301_120000", false, "", 0},
		{"foo.backup_20260101_120000.x", false, "", 0},
		{"foo.backup_20260101_120000.0", false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, ok := ParseName(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.orig, n.Original)
				assert.Equal(t, tt.seq, n.Seq)
				assert.Equal(t, tt.in, n.String())
			}
		})
	}
}

func TestName_ID(t *testing.T) {
	assert.Equal(t, "20260102_150405", Name{Time: t0}.ID())
	assert.Equal(t, "20260102_150405.3", Name{Time: t0, Seq: 3}.ID())
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	writeFile(t, path, `{"a":1}`, 0o600)

	m := NewManager(WithClock(fixedClock(t0, 0)))
	snap, err := m.Snapshot(path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "settings.json.backup_20260102_150405"), snap.Path)
	assert.Equal(t, path, snap.OriginalPath)
	assert.Equal(t, `{"a":1}`, readFile(t, snap.Path))

	info, err := os.Stat(snap.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSnapshot_SameSecondCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "CLAUDE.md")
	writeFile(t, path, "v1", 0o644)

	m := NewManager(WithClock(fixedClock(t0, 0)))
	first, err := m.Snapshot(path)
	require.NoError(t, err)
	second, err := m.Snapshot(path)
	require.NoError(t, err)
	third, err := m.Snapshot(path)
	require.NoError(t, err)

	assert.Equal(t, "20260102_150405", first.ID())
	assert.Equal(t, "20260102_150405.1", second.ID())
	assert.Equal(t, "20260102_150405.2", third.ID())
}

func TestSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()
	m := NewManager()

	_, err := m.Snapshot(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	_, err = m.Snapshot(dir)
	assert.True(t, errors.Is(err, ErrNotRegularFile))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	other := filepath.Join(dir, "other.json")
	writeFile(t, path, "x", 0o644)
	writeFile(t, other, "y", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Minute)))
	for range 3 {
		_, err := m.Snapshot(path)
		require.NoError(t, err)
	}
	_, err := m.Snapshot(other)
	require.NoError(t, err)

	snaps, err := m.List(path)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "20260102_150605", snaps[0].ID())
	assert.Equal(t, "20260102_150405", snaps[2].ID())

	none, err := m.List(filepath.Join(dir, "nope", "file"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListTree(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.md")
	b := filepath.Join(root, "rules", "b.md")
	writeFile(t, a, "a", 0o644)
	writeFile(t, b, "b", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	for _, p := range []string{b, a, b} {
		_, err := m.Snapshot(p)
		require.NoError(t, err)
	}

	snaps, err := m.ListTree(root)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, a, snaps[0].OriginalPath)
	assert.Equal(t, b, snaps[1].OriginalPath)
	assert.True(t, snaps[1].Time.After(snaps[2].Time))

	missing, err := m.ListTree(filepath.Join(root, "missing"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, "v1", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	first, err := m.Snapshot(path)
	require.NoError(t, err)

	writeFile(t, path, "v2", 0o644)
	_, err = m.Snapshot(path)
	require.NoError(t, err)

	writeFile(t, path, "v3", 0o644)

	res, err := m.Restore(path, first.ID())
	require.NoError(t, err)
	assert.Equal(t, "v1", readFile(t, path))
	require.NotNil(t, res.Saved)
	assert.Equal(t, "v3", readFile(t, res.Saved.Path))

	res, err = m.Restore(path, "")
	require.NoError(t, err)
	assert.Equal(t, "v3", readFile(t, path), "empty id restores the newest snapshot")
	assert.Equal(t, filepath.Dir(path), filepath.Dir(res.Restored.Path))
}

func TestRestore_IdenticalSkipsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, "same", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	_, err := m.Snapshot(path)
	require.NoError(t, err)

	res, err := m.Restore(path, "")
	require.NoError(t, err)
	assert.Nil(t, res.Saved)

	snaps, err := m.List(path)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestRestore_MissingOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, "v1", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	_, err := m.Snapshot(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	res, err := m.Restore(path, "")
	require.NoError(t, err)
	assert.Nil(t, res.Saved)
	assert.Equal(t, "v1", readFile(t, path))
}

func TestRestore_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, "v1", 0o644)
	m := NewManager(WithClock(fixedClock(t0, time.Second)))

	_, err := m.Restore(path, "")
	assert.True(t, errors.Is(err, ErrNoSnapshots))

	_, err = m.Snapshot(path)
	require.NoError(t, err)
	_, err = m.Restore(path, "19990101_000000")
	assert.True(t, errors.Is(err, ErrSnapshotNotFound))
}

func TestFind_AcceptsFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, "v1", 0o644)
	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	snap, err := m.Snapshot(path)
	require.NoError(t, err)

	found, err := m.Find(path, filepath.Base(snap.Path))
	require.NoError(t, err)
	assert.Equal(t, snap.Path, found.Path)
}

func TestPrune(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, "x", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	for range 5 {
		_, err := m.Snapshot(path)
		require.NoError(t, err)
	}

	removed, err := m.Prune(path, 2)
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	snaps, err := m.List(path)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "20260102_150409", snaps[0].ID())

	_, err = m.Prune(path, -1)
	assert.Error(t, err)

	removed, err = m.Prune(path, 10)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestPruneTree(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.md")
	b := filepath.Join(root, "skills", "x", "SKILL.md")
	writeFile(t, a, "a", 0o644)
	writeFile(t, b, "b", 0o644)

	m := NewManager(WithClock(fixedClock(t0, time.Second)))
	for _, p := range []string{a, a, a, b, b} {
		_, err := m.Snapshot(p)
		require.NoError(t, err)
	}

	removed, err := m.PruneTree(root, 1)
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	left, err := m.ListTree(root)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "just now", FormatAge(t0, t0.Add(10*time.Second)))
	assert.Equal(t, "5m ago", FormatAge(t0, t0.Add(5*time.Minute)))
	assert.Equal(t, "3h ago", FormatAge(t0, t0.Add(3*time.Hour)))
	assert.Equal(t, "2d ago", FormatAge(t0, t0.Add(49*time.Hour)))
}
