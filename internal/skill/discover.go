package skill

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/claudekit/internal/errors"
)

// Kind identifies the type of a discovered document.
type Kind int

const (
	// KindSkill is a SKILL.md file.
	KindSkill Kind = iota
	// KindRule is a Markdown file below a rules directory.
	KindRule
)

func (k Kind) String() string {
	if k == KindRule {
		return "rule"
	}
	return "skill"
}

// Document is a file to validate.
type Document struct {
	Path string
	Kind Kind
}

// Discover finds SKILL.md files and rule files under roots. A root may
// also name a single file, which is classified by its name and location.
// Missing roots are skipped. Results are sorted by path.
func Discover(roots []string) ([]Document, error) {
	seen := make(map[string]bool)
	var docs []Document

	// An explicitly named Markdown file is validated as a skill even when
	// its name and location do not classify it.
	add := func(path string, explicit bool) {
		path = filepath.Clean(path)
		kind, ok := Classify(path)
		if !ok && explicit && filepath.Ext(path) == ".md" {
			kind, ok = KindSkill, true
		}
		if !ok || seen[path] {
			return
		}
		seen[path] = true
		docs = append(docs, Document{Path: path, Kind: kind})
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "inspecting %s", root)
		}

		if !info.IsDir() {
			add(root, true)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				add(path, false)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", root)
		}
	}

	slices.SortFunc(docs, func(a, b Document) int {
		return strings.Compare(a.Path, b.Path)
	})
	return docs, nil
}

// Classify reports whether path is a SKILL.md or a rule document.
func Classify(path string) (Kind, bool) {
	base := filepath.Base(path)
	if base == FileName {
		return KindSkill, true
	}
	if filepath.Ext(base) != ".md" {
		return 0, false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if part == "rules" {
			return KindRule, true
		}
	}
	return 0, false
}
