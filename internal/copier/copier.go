// Package copier copies bundle entries between the bundle and the system,
// taking timestamped snapshots before overwriting changed files.
package copier

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/thoreinstein/claudekit/internal/backup"
	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// Outcome is what CopyFile did to the destination.
type Outcome int

const (
	// Created means the destination did not exist.
	Created Outcome = iota
	// Updated means the destination existed with different content.
	Updated
	// Unchanged means the destination already held the source bytes.
	Unchanged
	// Skipped means nothing was copied, usually because the source is missing.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Direction selects which side of a pair is the source.
type Direction int

const (
	// ToSystem copies bundle files into the system.
	ToSystem Direction = iota
	// ToBundle copies system files into the bundle.
	ToBundle
)

func (d Direction) String() string {
	if d == ToBundle {
		return "system → bundle"
	}
	return "bundle → system"
}

// Ends returns the source and destination of pair for the direction.
func (d Direction) Ends(pair bundle.Pair) (src, dst string) {
	if d == ToBundle {
		return pair.System, pair.Bundle
	}
	return pair.Bundle, pair.System
}

// Result records the outcome of copying one file.
type Result struct {
	Scope   bundle.Scope `json:"scope,omitempty"`
	Rel     string       `json:"rel"`
	Src     string       `json:"src"`
	Dst     string       `json:"dst"`
	Outcome Outcome      `json:"outcome"`
	// Backup is the snapshot taken of the previous destination content.
	Backup string `json:"backup,omitempty"`
	// Reason explains a skipped result.
	Reason string `json:"reason,omitempty"`
}

// Copier copies files and bundle entries.
type Copier struct {
	layout    *bundle.Layout
	snapshots *backup.Manager
	dryRun    bool
	logger    *slog.Logger
}

// Option configures a Copier.
type Option func(*Copier)

// WithSnapshots enables snapshots of changed destinations using mgr.
// A nil manager disables them.
func WithSnapshots(mgr *backup.Manager) Option {
	return func(c *Copier) {
		c.snapshots = mgr
	}
}

// WithDryRun reports outcomes without writing anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Copier) {
		c.dryRun = dryRun
	}
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Copier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Copier over layout. Snapshots are off unless WithSnapshots
// is given.
func New(layout *bundle.Layout, opts ...Option) *Copier {
	c := &Copier{
		layout: layout,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DryRun reports whether the copier writes nothing.
func (c *Copier) DryRun() bool {
	return c.dryRun
}

// CopyFile copies src to dst byte for byte. Identical content is left alone.
// A differing destination is snapshotted first when snapshots are enabled.
// A missing source yields a Skipped result, not an error. A symlinked
// destination is written through: the link stays and its target is
// snapshotted and replaced.
func (c *Copier) CopyFile(src, dst string) (Result, error) {
	res := Result{Rel: filepath.Base(src), Src: src, Dst: dst}

	srcInfo, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		res.Outcome = Skipped
		res.Reason = "source missing"
		return res, nil
	}
	if err != nil {
		return res, errors.Wrapf(err, "stat %s", src)
	}
	if !srcInfo.Mode().IsRegular() {
		res.Outcome = Skipped
		res.Reason = "source is not a regular file"
		return res, nil
	}

	dst, err = resolveLink(dst)
	if err != nil {
		return res, err
	}

	dstInfo, err := os.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Outcome = Created
	case err != nil:
		return res, errors.Wrapf(err, "stat %s", dst)
	case !dstInfo.Mode().IsRegular():
		return res, errors.Newf("destination %s exists and is not a regular file", dst)
	default:
		same, err := fileutil.SameContent(src, dst)
		if err != nil {
			return res, err
		}
		if same {
			res.Outcome = Unchanged
			return res, nil
		}
		res.Outcome = Updated
	}

	if c.dryRun {
		return res, nil
	}

	if res.Outcome == Updated && c.snapshots != nil {
		snap, err := c.snapshots.Snapshot(dst)
		if err != nil {
			return res, errors.Wrapf(err, "backing up %s", dst)
		}
		res.Backup = snap.Path
	}

	if err := paths.EnsureDir(filepath.Dir(dst), paths.DefaultDirPerm); err != nil {
		return res, errors.Wrapf(err, "creating parent of %s", dst)
	}
	if err := fileutil.AtomicCopyFile(src, dst); err != nil {
		return res, errors.Wrapf(err, "copying %s to %s", src, dst)
	}

	c.logger.Debug("copied file", "src", src, "dst", dst, "outcome", res.Outcome.String())
	return res, nil
}

// resolveLink returns the file a symlinked path points at, or path itself
// when it is not a link. A dangling link resolves to its target.
func resolveLink(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return path, nil
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return path, errors.Wrapf(err, "resolving %s", path)
	}

	target, err := os.Readlink(path)
	if err != nil {
		return path, errors.Wrapf(err, "reading link %s", path)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return target, nil
}

// CopyPair copies one bundle entry in the given direction. Directories are
// walked with the layout's ignore patterns. A missing source yields a single
// Skipped result.
func (c *Copier) CopyPair(pair bundle.Pair, dir Direction) ([]Result, error) {
	src, dst := dir.Ends(pair)

	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("source missing, skipping", "scope", pair.Scope.String(), "path", src)
		return []Result{{
			Scope:   pair.Scope,
			Rel:     pair.Rel,
			Src:     src,
			Dst:     dst,
			Outcome: Skipped,
			Reason:  "source missing",
		}}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", src)
	}

	if !info.IsDir() {
		res, err := c.CopyFile(src, dst)
		res.Scope = pair.Scope
		res.Rel = pair.Rel
		if err != nil {
			return []Result{res}, err
		}
		return []Result{res}, nil
	}

	files, err := c.layout.Walk(src)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(files))
	for _, rel := range files {
		native := filepath.FromSlash(rel)
		res, err := c.CopyFile(filepath.Join(src, native), filepath.Join(dst, native))
		res.Scope = pair.Scope
		res.Rel = path.Join(pair.Rel, rel)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// CopyScope copies every managed entry of scope in the given direction.
func (c *Copier) CopyScope(scope bundle.Scope, dir Direction) ([]Result, error) {
	pairs, err := c.layout.Pairs(scope)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, p := range pairs {
		r, err := c.CopyPair(p, dir)
		results = append(results, r...)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// Summary counts results by outcome.
type Summary struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Backups   int `json:"backups"`
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case Created:
			s.Created++
		case Updated:
			s.Updated++
		case Unchanged:
			s.Unchanged++
		case Skipped:
			s.Skipped++
		}
		if r.Backup != "" {
			s.Backups++
		}
	}
	return s
}
