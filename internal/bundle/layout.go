package bundle

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
)

// DefaultIgnore lists the patterns excluded from every walk.
var DefaultIgnore = []string{
	"**/*.backup_*",
	"**/settings.local.json",
	"**/.DS_Store",
	"**/.git/**",
	// editor swap and backup files
	"**/*.swp",
	"**/.*.sw?",
	"**/*~",
	"**/4913",
}

// defaultEntries is used for a scope whose bundle subtree is missing or empty.
// Trailing slashes mark directories.
var defaultEntries = map[Scope][]string{
	Global: {
		"CLAUDE.md",
		"settings.json",
		"git-identity.md",
		"commands/",
		"agents/",
		"skills/",
		"rules/",
		"hooks/",
	},
	Project: {
		"CLAUDE.md",
		".claude/settings.json",
		".claude/rules/",
		".claude/skills/",
		".claude/commands/",
		".claude/agents/",
	},
	Enterprise: {
		"managed-settings.json",
		"CLAUDE.md",
	},
}

// Entry is a path managed within a scope, relative to the scope root and
// written with forward slashes.
type Entry struct {
	Rel string
	Dir bool
}

// Pair is the bundle and system location of one entry.
type Pair struct {
	Scope  Scope
	Rel    string
	Bundle string
	System string
	Dir    bool
}

// Layout maps bundle scope subtrees to their system targets.
type Layout struct {
	// Root is the bundle directory.
	Root string
	// ClaudeDir is the target of the global scope.
	ClaudeDir string
	// ProjectDir is the target of the project scope.
	ProjectDir string
	// EnterpriseDir is the target of the enterprise scope.
	EnterpriseDir string
	// Ignore holds doublestar patterns matched against relative slash paths.
	Ignore []string
}

// NewLayout returns a layout for the bundle at root with the platform
// default targets and ignore patterns.
func NewLayout(root, projectDir string) *Layout {
	return &Layout{
		Root:          root,
		ClaudeDir:     paths.ClaudeHome(),
		ProjectDir:    projectDir,
		EnterpriseDir: paths.EnterpriseDir(),
		Ignore:        slices.Clone(DefaultIgnore),
	}
}

// ScopeDir returns the bundle subtree for scope.
func (l *Layout) ScopeDir(scope Scope) string {
	return filepath.Join(l.Root, string(scope))
}

// TargetDir returns the system root for scope.
func (l *Layout) TargetDir(scope Scope) string {
	switch scope {
	case Global:
		return l.ClaudeDir
	case Project:
		return l.ProjectDir
	case Enterprise:
		return l.EnterpriseDir
	default:
		return ""
	}
}

// Ignored reports whether rel matches an ignore pattern.
func (l *Layout) Ignored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range l.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Entries returns the managed entries of scope: the non-ignored top-level
// children of its bundle subtree, or the defaults when the subtree is missing
// or empty. A layout without a Root always uses the defaults.
func (l *Layout) Entries(scope Scope) ([]Entry, error) {
	var dirEntries []fs.DirEntry
	if l.Root != "" {
		var err error
		dirEntries, err = os.ReadDir(l.ScopeDir(scope))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "reading %s scope", scope)
		}
	}

	var entries []Entry
	for _, de := range dirEntries {
		if l.Ignored(de.Name()) {
			continue
		}
		entries = append(entries, Entry{Rel: de.Name(), Dir: de.IsDir()})
	}
	if len(entries) > 0 {
		return entries, nil
	}

	for _, rel := range defaultEntries[scope] {
		entries = append(entries, Entry{
			Rel: strings.TrimSuffix(rel, "/"),
			Dir: strings.HasSuffix(rel, "/"),
		})
	}
	return entries, nil
}

// Pairs returns the bundle/system location pair for every entry of scope.
func (l *Layout) Pairs(scope Scope) ([]Pair, error) {
	entries, err := l.Entries(scope)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, l.Pair(scope, e.Rel, e.Dir))
	}
	return pairs, nil
}

// Pair builds the location pair of rel within scope.
func (l *Layout) Pair(scope Scope, rel string, dir bool) Pair {
	native := filepath.FromSlash(rel)
	return Pair{
		Scope:  scope,
		Rel:    rel,
		Bundle: filepath.Join(l.ScopeDir(scope), native),
		System: filepath.Join(l.TargetDir(scope), native),
		Dir:    dir,
	}
}

// Locate maps a bundle-relative slash path such as "global/skills/a/SKILL.md"
// to its scope and scope-relative path.
func Locate(rel string) (Scope, string, error) {
	rel = path.Clean(filepath.ToSlash(rel))
	head, tail, _ := strings.Cut(rel, "/")
	scope, err := ParseScope(head)
	if err != nil {
		return "", "", err
	}
	if tail == "" {
		return "", "", errors.Newf("%q names a scope, not a file", rel)
	}
	return scope, tail, nil
}

// PairFor maps an absolute path inside the bundle to the file pair it
// belongs to. It reports false for paths outside every scope subtree, for
// scope directories themselves and for ignored paths.
func (l *Layout) PairFor(p string) (Pair, bool) {
	for _, scope := range Scopes {
		rel, err := filepath.Rel(l.ScopeDir(scope), p)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if l.Ignored(rel) {
			return Pair{}, false
		}
		return l.Pair(scope, filepath.ToSlash(rel), false), true
	}
	return Pair{}, false
}

// Walk returns the regular files under root as sorted relative slash paths,
// skipping ignored paths. A missing root yields no files.
func (l *Layout) Walk(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if l.Ignored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", root)
	}

	slices.Sort(files)
	return files, nil
}

// Looks reports whether dir looks like a bundle, meaning it has at least one
// scope subtree.
func Looks(dir string) bool {
	for _, s := range Scopes {
		if info, err := os.Stat(filepath.Join(dir, string(s))); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}
