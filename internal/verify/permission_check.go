package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/thoreinstein/claudekit/internal/errors"
)

// worldWrite is the other-write permission bit.
const worldWrite os.FileMode = 0o002

// permIssue is a world-writable path.
type permIssue struct {
	Path        string
	Dir         bool
	Mode        os.FileMode
	Permissions string
}

// securedMode returns mode with other-write cleared. Owner and group bits,
// sticky and setgid are kept.
func securedMode(mode os.FileMode) os.FileMode {
	return mode.Perm()&^worldWrite | mode&(os.ModeSticky|os.ModeSetgid)
}

// PermissionCheck flags world-writable scope roots, content directories and
// settings files.
type PermissionCheck struct {
	target Target
	issues []permIssue
	goos   string
}

var (
	_ Check = (*PermissionCheck)(nil)
	_ Fixer = (*PermissionCheck)(nil)
)

// NewPermissionCheck creates a PermissionCheck for target.
func NewPermissionCheck(target Target) *PermissionCheck {
	return &PermissionCheck{target: target, goos: runtime.GOOS}
}

// Name returns the unique identifier for this check.
func (c *PermissionCheck) Name() string {
	return "permissions"
}

// Category returns the grouping for this check.
func (c *PermissionCheck) Category() string {
	return "filesystem"
}

// Run inspects the permission bits of each path. Unix permissions do not
// apply on Windows, where the check always passes.
func (c *PermissionCheck) Run() *CheckResult {
	c.issues = nil
	if c.goos == "windows" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  "permission checks skipped on windows",
		}
	}

	checked := 0
	for _, path := range c.paths() {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		checked++
		if info.Mode().Perm()&worldWrite != 0 {
			c.issues = append(c.issues, permIssue{
				Path:        path,
				Dir:         info.IsDir(),
				Mode:        info.Mode(),
				Permissions: formatPermissions(info.Mode()),
			})
		}
	}

	if len(c.issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have safe permissions", checked),
		}
	}

	findings := make([]finding, 0, len(c.issues))
	hints := make([]string, 0, len(c.issues))
	for _, issue := range c.issues {
		kind := "file"
		if issue.Dir {
			kind = "directory"
		}
		findings = append(findings, finding{
			Path:     issue.Path,
			Problem:  fmt.Sprintf("%s is world-writable (mode %s)", kind, issue.Permissions),
			Severity: SeverityWarning,
		})
		hints = append(hints, "chmod o-w "+issue.Path)
	}

	result := resultFrom(c, findings, "")
	result.Fixable = true
	result.FixHint = strings.Join(hints, "; ")
	return result
}

// paths lists the scope roots, content directories and settings files.
func (c *PermissionCheck) paths() []string {
	var out []string
	for _, scope := range c.target.Scopes {
		root := c.target.Layout.TargetDir(scope)
		out = append(out, root, c.target.SettingsPath(scope))
		cfg := c.target.configDir(scope)
		if cfg != root {
			out = append(out, cfg)
		}
		for _, dir := range countedDirs {
			out = append(out, filepath.Join(cfg, dir))
		}
	}
	return out
}

// CanFix returns true if the last Run found world-writable paths.
func (c *PermissionCheck) CanFix() bool {
	return len(c.issues) > 0
}

// Fix removes world write access and leaves the remaining bits alone.
func (c *PermissionCheck) Fix() []FixResult {
	results := make([]FixResult, 0, len(c.issues))
	for _, issue := range c.issues {
		target := securedMode(issue.Mode)

		result := FixResult{Path: issue.Path}
		if err := os.Chmod(issue.Path, target); err != nil {
			result.Description = fmt.Sprintf("failed to chmod %04o: %v", target.Perm(), err)
			result.Error = errors.Wrapf(err, "chmod %04o %s", target.Perm(), issue.Path)
		} else {
			result.Fixed = true
			result.Description = fmt.Sprintf("chmod %04o", target.Perm())
		}
		results = append(results, result)
	}
	return results
}
