package verify

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/skill"
)

// countedDirs are the content directories whose files are counted.
var countedDirs = []string{"rules", "skills", "commands", "agents"}

// CountCheck reports how many rules, skills, commands and agents are installed.
type CountCheck struct {
	target Target
}

var _ Check = (*CountCheck)(nil)

// NewCountCheck creates a CountCheck for target.
func NewCountCheck(target Target) *CountCheck {
	return &CountCheck{target: target}
}

// Name returns the unique identifier for this check.
func (c *CountCheck) Name() string {
	return "content-counts"
}

// Category returns the grouping for this check.
func (c *CountCheck) Category() string {
	return "files"
}

// Run counts Markdown documents per content directory. Skills are counted
// by their SKILL.md files.
func (c *CountCheck) Run() *CheckResult {
	details := make(map[string]any)
	var parts []string

	for _, scope := range c.target.Scopes {
		if scope == bundle.Enterprise {
			continue
		}
		counts := make(map[string]int, len(countedDirs))
		for _, dir := range countedDirs {
			n, err := c.count(filepath.Join(c.target.configDir(scope), dir), dir == "skills")
			if err != nil {
				return &CheckResult{
					Name:     c.Name(),
					Category: c.Category(),
					Status:   SeverityWarning,
					Message:  err.Error(),
				}
			}
			counts[dir] = n
		}
		details[string(scope)] = counts
		parts = append(parts, fmt.Sprintf("%s: %d rules, %d skills, %d commands, %d agents",
			scope, counts["rules"], counts["skills"], counts["commands"], counts["agents"]))
	}

	message := strings.Join(parts, "; ")
	if message == "" {
		message = "no content directories in scope"
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityInfo,
		Message:  message,
		Details:  details,
	}
}

func (c *CountCheck) count(dir string, skillsOnly bool) (int, error) {
	files, err := c.target.Layout.Walk(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rel := range files {
		base := path.Base(rel)
		if skillsOnly {
			if base == skill.FileName {
				n++
			}
			continue
		}
		if path.Ext(base) == ".md" {
			n++
		}
	}
	return n, nil
}
