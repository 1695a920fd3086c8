package verify

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/thoreinstein/claudekit/internal/bundle"
)

// requiredFiles is the installation checklist per scope. Trailing slashes
// mark directories.
var requiredFiles = map[bundle.Scope][]string{
	bundle.Global: {
		"CLAUDE.md",
		"settings.json",
	},
	bundle.Project: {
		"CLAUDE.md",
		".claude/settings.json",
		".claude/rules/",
		".claude/skills/",
	},
	bundle.Enterprise: {
		"managed-settings.json",
	},
}

// FileCheck verifies that the required files of each scope exist.
type FileCheck struct {
	target Target
}

var _ Check = (*FileCheck)(nil)

// NewFileCheck creates a FileCheck for target.
func NewFileCheck(target Target) *FileCheck {
	return &FileCheck{target: target}
}

// Name returns the unique identifier for this check.
func (c *FileCheck) Name() string {
	return "required-files"
}

// Category returns the grouping for this check.
func (c *FileCheck) Category() string {
	return "files"
}

// Run checks every required path.
func (c *FileCheck) Run() *CheckResult {
	var findings []finding
	checked := 0

	for _, scope := range c.target.Scopes {
		root := c.target.Layout.TargetDir(scope)
		for _, rel := range requiredFiles[scope] {
			checked++
			wantDir := rel[len(rel)-1] == '/'
			path := filepath.Join(root, filepath.FromSlash(rel))

			info, err := os.Stat(path)
			switch {
			case err != nil:
				findings = append(findings, finding{Path: path, Problem: "missing", Severity: SeverityError})
			case wantDir && !info.IsDir():
				findings = append(findings, finding{Path: path, Problem: "expected a directory", Severity: SeverityError})
			case !wantDir && info.IsDir():
				findings = append(findings, finding{Path: path, Problem: "expected a file", Severity: SeverityError})
			}
		}
	}

	result := resultFrom(c, findings, fmt.Sprintf("all %d required paths present", checked))
	if result.Status == SeverityError {
		result.FixHint = "run: claudekit install"
	}
	return result
}
