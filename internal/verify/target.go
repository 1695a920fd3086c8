package verify

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
)

// Target is the set of installed scopes a check inspects.
type Target struct {
	Layout *bundle.Layout
	Scopes []bundle.Scope
}

// settingsFile is the settings document of each scope, relative to its root.
var settingsFile = map[bundle.Scope]string{
	bundle.Global:     "settings.json",
	bundle.Project:    filepath.Join(".claude", "settings.json"),
	bundle.Enterprise: "managed-settings.json",
}

// SettingsPath returns the settings document of scope.
func (t Target) SettingsPath(scope bundle.Scope) string {
	return filepath.Join(t.Layout.TargetDir(scope), settingsFile[scope])
}

// configDir returns the directory holding rules, skills, commands and agents.
func (t Target) configDir(scope bundle.Scope) string {
	root := t.Layout.TargetDir(scope)
	if scope == bundle.Project {
		return filepath.Join(root, ".claude")
	}
	return root
}

// installedFiles returns the absolute paths of every installed file managed
// by scope: file entries that exist plus the walked contents of directory
// entries.
func (t Target) installedFiles(scope bundle.Scope) ([]string, error) {
	pairs, err := t.Layout.Pairs(scope)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, p := range pairs {
		info, err := os.Stat(p.System)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", p.System)
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() {
				files = append(files, p.System)
			}
			continue
		}

		rels, err := t.Layout.Walk(p.System)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			files = append(files, filepath.Join(p.System, filepath.FromSlash(rel)))
		}
	}
	return files, nil
}
