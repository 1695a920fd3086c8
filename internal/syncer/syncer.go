// Package syncer compares a bundle with the installed system and copies
// differing files in either direction.
package syncer

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/copier"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// Status classifies one managed file.
type Status int

const (
	// Identical means both sides hold the same bytes.
	Identical Status = iota
	// Different means both sides exist with different content.
	Different
	// BundleOnly means the file exists only in the bundle.
	BundleOnly
	// SystemOnly means the file exists only in the system.
	SystemOnly
)

func (s Status) String() string {
	switch s {
	case Identical:
		return "identical"
	case Different:
		return "different"
	case BundleOnly:
		return "bundle-only"
	case SystemOnly:
		return "system-only"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Entry is the comparison result for one file.
type Entry struct {
	Scope  bundle.Scope `json:"scope"`
	Rel    string       `json:"rel"`
	Bundle string       `json:"bundle"`
	System string       `json:"system"`
	Status Status       `json:"status"`
}

// Counts tallies entries by status.
type Counts struct {
	Identical  int `json:"identical"`
	Different  int `json:"different"`
	BundleOnly int `json:"bundle_only"`
	SystemOnly int `json:"system_only"`
}

// Report is the result of Compare.
type Report struct {
	Entries []Entry `json:"entries"`
	Counts  Counts  `json:"counts"`
}

// InSync reports whether every compared file is identical.
func (r *Report) InSync() bool {
	return r.Counts.Different == 0 && r.Counts.BundleOnly == 0 && r.Counts.SystemOnly == 0
}

// Compare classifies every managed file of scopes. It only reads.
func Compare(layout *bundle.Layout, scopes []bundle.Scope) (*Report, error) {
	report := &Report{Entries: []Entry{}}

	for _, scope := range scopes {
		pairs, err := layout.Pairs(scope)
		if err != nil {
			return nil, err
		}
		for _, p := range pairs {
			entries, err := comparePair(layout, p)
			if err != nil {
				return nil, err
			}
			report.Entries = append(report.Entries, entries...)
		}
	}

	for _, e := range report.Entries {
		switch e.Status {
		case Identical:
			report.Counts.Identical++
		case Different:
			report.Counts.Different++
		case BundleOnly:
			report.Counts.BundleOnly++
		case SystemOnly:
			report.Counts.SystemOnly++
		}
	}
	return report, nil
}

func comparePair(layout *bundle.Layout, p bundle.Pair) ([]Entry, error) {
	bundleDir, err := isDir(p.Bundle)
	if err != nil {
		return nil, err
	}
	systemDir, err := isDir(p.System)
	if err != nil {
		return nil, err
	}

	if !p.Dir && !bundleDir && !systemDir {
		e, ok, err := compareFile(p.Scope, p.Rel, p.Bundle, p.System)
		if err != nil || !ok {
			return nil, err
		}
		return []Entry{e}, nil
	}

	bundleFiles, err := layout.Walk(p.Bundle)
	if err != nil {
		return nil, err
	}
	systemFiles, err := layout.Walk(p.System)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, rel := range union(bundleFiles, systemFiles) {
		native := filepath.FromSlash(rel)
		e, ok, err := compareFile(p.Scope, path.Join(p.Rel, rel),
			filepath.Join(p.Bundle, native), filepath.Join(p.System, native))
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// compareFile classifies a single file pair. It reports false when neither
// side exists.
func compareFile(scope bundle.Scope, rel, bundlePath, systemPath string) (Entry, bool, error) {
	e := Entry{Scope: scope, Rel: rel, Bundle: bundlePath, System: systemPath}

	inBundle, err := isFile(bundlePath)
	if err != nil {
		return e, false, err
	}
	inSystem, err := isFile(systemPath)
	if err != nil {
		return e, false, err
	}

	switch {
	case inBundle && inSystem:
		same, err := fileutil.SameContent(bundlePath, systemPath)
		if err != nil {
			return e, false, err
		}
		e.Status = Different
		if same {
			e.Status = Identical
		}
	case inBundle:
		e.Status = BundleOnly
	case inSystem:
		e.Status = SystemOnly
	default:
		return e, false, nil
	}
	return e, true, nil
}

func isDir(p string) (bool, error) {
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", p)
	}
	return info.IsDir(), nil
}

func isFile(p string) (bool, error) {
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", p)
	}
	return info.Mode().IsRegular(), nil
}

// union merges two sorted lists without duplicates.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i] < b[j]):
			out = append(out, a[i])
			i++
		case i >= len(a) || b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Apply copies the entries that differ in the given direction: bundle-only
// and different files to the system, or system-only and different files to
// the bundle. Identical entries are never touched.
func Apply(c *copier.Copier, report *Report, dir copier.Direction) ([]copier.Result, error) {
	var results []copier.Result
	for _, e := range report.Entries {
		if !needsCopy(e.Status, dir) {
			continue
		}
		src, dst := dir.Ends(bundle.Pair{Bundle: e.Bundle, System: e.System})
		res, err := c.CopyFile(src, dst)
		res.Scope = e.Scope
		res.Rel = e.Rel
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func needsCopy(s Status, dir copier.Direction) bool {
	switch s {
	case Different:
		return true
	case BundleOnly:
		return dir == copier.ToSystem
	case SystemOnly:
		return dir == copier.ToBundle
	default:
		return false
	}
}
