package copier

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudekit/internal/backup"
	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func testLayout(t *testing.T) *bundle.Layout {
	t.Helper()
	base := t.TempDir()
	l := bundle.NewLayout(filepath.Join(base, "bundle"), filepath.Join(base, "project"))
	l.ClaudeDir = filepath.Join(base, "home", ".claude")
	l.EnterpriseDir = filepath.Join(base, "enterprise")
	return l
}

func newCopier(t *testing.T, l *bundle.Layout, opts ...Option) *Copier {
	t.Helper()
	opts = append([]Option{WithLogger(logging.ForTest(t))}, opts...)
	return New(l, opts...)
}

// backupFiles lists timestamped backup copies under root.
func backupFiles(t *testing.T, root string) []string {
	t.Helper()
	var found []string
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.Contains(d.Name(), backup.Marker) {
			found = append(found, p)
		}
		return nil
	})
	return found
}

func TestCopyFile_Outcomes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "settings.json")
	dst := filepath.Join(dir, "dst", "nested", "settings.json")
	writeFile(t, src, `{"v":1}`)

	mgr := backup.NewManager(backup.WithClock(func() time.Time {
		return time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	}))
	c := newCopier(t, testLayout(t), WithSnapshots(mgr))

	res, err := c.CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, Created, res.Outcome)
	assert.Equal(t, `{"v":1}`, readFile(t, dst))

	res, err = c.CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Empty(t, res.Backup)

	writeFile(t, src, `{"v":2}`)
	res, err = c.CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Equal(t, dst+".backup_20260304_050607", res.Backup)
	assert.Equal(t, `{"v":1}`, readFile(t, res.Backup))
	assert.Equal(t, `{"v":2}`, readFile(t, dst))

	res, err = c.CopyFile(filepath.Join(dir, "missing"), dst)
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcome)
	assert.Equal(t, "source missing", res.Reason)
}

func TestCopyFile_DestinationMatchesSource(t *testing.T) {
	dir := t.TempDir()
	c := newCopier(t, testLayout(t))

	contents := []string{
		"",
		"plain text\n",
		"line1\r\nline2\r\n",
		string([]byte{0x00, 0xff, 0x10, 0x80}),
		strings.Repeat("0123456789", 10_000),
	}

	dst := filepath.Join(dir, "out", "file")
	for i, content := range contents {
		src := filepath.Join(dir, "in", "file")
		writeFile(t, src, content)

		_, err := c.CopyFile(src, dst)
		require.NoError(t, err, "case %d", i)
		assert.Equal(t, content, readFile(t, dst), "case %d", i)
	}
}

func TestCopyFile_PreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hook.sh")
	writeFile(t, src, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(src, 0o755))

	dst := filepath.Join(dir, "out", "hook.sh")
	_, err := newCopier(t, testLayout(t)).CopyFile(src, dst)
	require.NoError(t, err)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyFile_NoSnapshotsWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	dst := filepath.Join(dir, "b")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	res, err := newCopier(t, testLayout(t)).CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Empty(t, res.Backup)
	assert.Empty(t, backupFiles(t, dir))
}

func TestCopyFile_DryRun(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	writeFile(t, src, "new")
	existing := filepath.Join(dir, "existing")
	writeFile(t, existing, "old")

	c := newCopier(t, testLayout(t), WithDryRun(true), WithSnapshots(backup.NewManager()))
	assert.True(t, c.DryRun())

	res, err := c.CopyFile(src, filepath.Join(dir, "new", "file"))
	require.NoError(t, err)
	assert.Equal(t, Created, res.Outcome)
	assert.NoFileExists(t, filepath.Join(dir, "new", "file"))

	res, err = c.CopyFile(src, existing)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Equal(t, "old", readFile(t, existing))
	assert.Empty(t, backupFiles(t, dir))
}

func TestCopyFile_SymlinkedDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "bundle", "CLAUDE.md")
	target := filepath.Join(dir, "dotfiles", "CLAUDE.md")
	link := filepath.Join(dir, "home", "CLAUDE.md")
	writeFile(t, src, "new")
	writeFile(t, target, "old")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink(target, link))

	mgr := backup.NewManager(backup.WithClock(func() time.Time {
		return time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	}))
	c := newCopier(t, testLayout(t), WithSnapshots(mgr))

	res, err := c.CopyFile(src, link)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Equal(t, link, res.Dst)
	resolved, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	assert.Equal(t, resolved+".backup_20260304_050607", res.Backup)
	assert.Equal(t, "old", readFile(t, res.Backup))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link is kept")
	assert.Equal(t, "new", readFile(t, target))

	res, err = c.CopyFile(src, link)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
}

func TestCopyFile_DanglingSymlinkDestination(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "bundle", "settings.json")
	link := filepath.Join(dir, "home", "settings.json")
	writeFile(t, src, "{}")
	require.NoError(t, os.MkdirAll(filepath.Dir(link), 0o755))
	require.NoError(t, os.Symlink(filepath.Join("..", "dotfiles", "settings.json"), link))

	res, err := newCopier(t, testLayout(t)).CopyFile(src, link)
	require.NoError(t, err)
	assert.Equal(t, Created, res.Outcome)

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)
	assert.Equal(t, "{}", readFile(t, filepath.Join(dir, "dotfiles", "settings.json")))
}

func TestCopyFile_DestinationIsDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	writeFile(t, src, "x")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "d"), 0o755))

	_, err := newCopier(t, testLayout(t)).CopyFile(src, filepath.Join(dir, "d"))
	assert.Error(t, err)
}

func TestCopyPair_Directory(t *testing.T) {
	l := testLayout(t)
	skills := filepath.Join(l.ScopeDir(bundle.Global), "skills")
	writeFile(t, filepath.Join(skills, "a", "SKILL.md"), "a")
	writeFile(t, filepath.Join(skills, "b", "SKILL.md"), "b")
	writeFile(t, filepath.Join(skills, "a", "SKILL.md.backup_20250101_000000"), "old")

	c := newCopier(t, l)
	results, err := c.CopyPair(l.Pair(bundle.Global, "skills", true), ToSystem)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "skills/a/SKILL.md", results[0].Rel)
	assert.Equal(t, bundle.Global, results[0].Scope)

	assert.Equal(t, "b", readFile(t, filepath.Join(l.ClaudeDir, "skills", "b", "SKILL.md")))
	assert.NoFileExists(t, filepath.Join(l.ClaudeDir, "skills", "a", "SKILL.md.backup_20250101_000000"))
}

func TestCopyPair_MissingSource(t *testing.T) {
	l := testLayout(t)
	results, err := newCopier(t, l).CopyPair(l.Pair(bundle.Global, "agents", true), ToSystem)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Skipped, results[0].Outcome)
	assert.Equal(t, "agents", results[0].Rel)
}

func TestDirection_Ends(t *testing.T) {
	p := bundle.Pair{Bundle: "b", System: "s"}
	src, dst := ToSystem.Ends(p)
	assert.Equal(t, []string{"b", "s"}, []string{src, dst})
	src, dst = ToBundle.Ends(p)
	assert.Equal(t, []string{"s", "b"}, []string{src, dst})
	assert.Equal(t, "system → bundle", ToBundle.String())
}

// A capture followed by an install on an unmodified system must leave every
// system file unchanged and create no backup copies.
func TestCaptureThenInstallIsNoop(t *testing.T) {
	l := testLayout(t)
	writeFile(t, filepath.Join(l.ClaudeDir, "CLAUDE.md"), "# guide\n")
	writeFile(t, filepath.Join(l.ClaudeDir, "settings.json"), `{"hooks":{}}`)
	writeFile(t, filepath.Join(l.ClaudeDir, "rules", "go.md"), "# go\n")
	writeFile(t, filepath.Join(l.ClaudeDir, "skills", "review", "SKILL.md"), "---\nname: review\n---\n")
	writeFile(t, filepath.Join(l.ClaudeDir, "settings.local.json"), `{"local":true}`)
	writeFile(t, filepath.Join(l.ProjectDir, "CLAUDE.md"), "# project\n")
	writeFile(t, filepath.Join(l.ProjectDir, ".claude", "settings.json"), "{}")

	capture := newCopier(t, l)
	for _, s := range []bundle.Scope{bundle.Global, bundle.Project} {
		_, err := capture.CopyScope(s, ToBundle)
		require.NoError(t, err)
	}
	assert.NoFileExists(t, filepath.Join(l.ScopeDir(bundle.Global), "settings.local.json"))

	install := newCopier(t, l, WithSnapshots(backup.NewManager()))
	for _, s := range []bundle.Scope{bundle.Global, bundle.Project} {
		results, err := install.CopyScope(s, ToSystem)
		require.NoError(t, err)
		for _, r := range results {
			assert.Contains(t, []Outcome{Unchanged, Skipped}, r.Outcome, r.Rel)
		}
		sum := Summarize(results)
		assert.Zero(t, sum.Created+sum.Updated+sum.Backups)
	}

	assert.Empty(t, backupFiles(t, l.ClaudeDir))
	assert.Empty(t, backupFiles(t, l.ProjectDir))
	assert.Equal(t, `{"hooks":{}}`, readFile(t, filepath.Join(l.ClaudeDir, "settings.json")))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{
		{Outcome: Created},
		{Outcome: Updated, Backup: "x"},
		{Outcome: Unchanged},
		{Outcome: Unchanged},
		{Outcome: Skipped},
	})
	assert.Equal(t, Summary{Created: 1, Updated: 1, Unchanged: 2, Skipped: 1, Backups: 1}, s)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "created", Created.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
