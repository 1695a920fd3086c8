package verify

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// MaxImportDepth bounds how deep imported files are followed.
const MaxImportDepth = 5

var (
	// legacyImportRe matches a whole "@import path" line.
	legacyImportRe = regexp.MustCompile(`^\s*@import\s+(\S+)\s*$`)
	// inlineImportRe matches @path tokens that start a word.
	inlineImportRe = regexp.MustCompile(`(?:^|\s)@([^\s` + "`" + `]+)`)
	// codeSpanRe matches inline code, which is never scanned for imports.
	codeSpanRe = regexp.MustCompile("`[^`]*`")
)

// ParseImports returns the import references in a CLAUDE.md document, in
// order of appearance. Fenced code blocks and inline code spans are skipped.
// Inline references must look like paths (contain "/" or ".", or start with
// "~") so that @mentions are not mistaken for imports.
func ParseImports(data []byte) []string {
	var refs []string
	inFence := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := legacyImportRe.FindStringSubmatch(line); m != nil {
			refs = append(refs, m[1])
			continue
		}

		line = codeSpanRe.ReplaceAllString(line, "")
		for _, m := range inlineImportRe.FindAllStringSubmatch(line, -1) {
			ref := strings.TrimRight(m[1], ".,;:)")
			if looksLikePath(ref) {
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

func looksLikePath(ref string) bool {
	return strings.HasPrefix(ref, "~") || strings.ContainsAny(ref, "/.")
}

// resolveImport turns a reference into an absolute path relative to the
// importing file's directory.
func resolveImport(ref, fromDir string) string {
	if strings.HasPrefix(ref, "~") {
		return paths.ExpandHome(ref)
	}
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(fromDir, filepath.FromSlash(ref))
}

// ImportCheck verifies that the imports of each scope's CLAUDE.md resolve.
type ImportCheck struct {
	target Target
}

var _ Check = (*ImportCheck)(nil)

// NewImportCheck creates an ImportCheck for target.
func NewImportCheck(target Target) *ImportCheck {
	return &ImportCheck{target: target}
}

// Name returns the unique identifier for this check.
func (c *ImportCheck) Name() string {
	return "claude-md-imports"
}

// Category returns the grouping for this check.
func (c *ImportCheck) Category() string {
	return "content"
}

// Run follows imports from every CLAUDE.md up to MaxImportDepth levels.
// A reference to a missing file is a warning.
func (c *ImportCheck) Run() *CheckResult {
	var findings []finding
	resolved := 0
	visited := make(map[string]bool)

	var walk func(file string, depth int)
	walk = func(file string, depth int) {
		if visited[file] || depth > MaxImportDepth {
			return
		}
		visited[file] = true

		data, err := fileutil.ReadFileWithLimit(file)
		if err != nil {
			findings = append(findings, finding{Path: file, Problem: err.Error(), Severity: SeverityWarning})
			return
		}

		for _, ref := range ParseImports(data) {
			target := resolveImport(ref, filepath.Dir(file))
			info, err := os.Stat(target)
			if err != nil {
				problem := fmt.Sprintf("import @%s not found", ref)
				if !errors.Is(err, fs.ErrNotExist) {
					problem = fmt.Sprintf("import @%s: %v", ref, err)
				}
				findings = append(findings, finding{Path: file, Problem: problem, Severity: SeverityWarning})
				continue
			}
			resolved++
			if info.Mode().IsRegular() {
				walk(target, depth+1)
			}
		}
	}

	for _, file := range c.claudeFiles() {
		walk(file, 0)
	}

	if len(visited) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no CLAUDE.md files found",
		}
	}

	result := resultFrom(c, findings, fmt.Sprintf("%d import(s) resolved in %d file(s)", resolved, len(visited)))
	if result.Details == nil {
		result.Details = map[string]any{}
	}
	result.Details["resolved"] = resolved
	return result
}

// claudeFiles lists the CLAUDE.md files that exist in the target scopes.
func (c *ImportCheck) claudeFiles() []string {
	var files []string
	for _, scope := range c.target.Scopes {
		candidates := []string{filepath.Join(c.target.Layout.TargetDir(scope), "CLAUDE.md")}
		if scope == bundle.Project {
			candidates = append(candidates, filepath.Join(c.target.configDir(scope), "CLAUDE.md"))
		}
		for _, p := range candidates {
			if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
				files = append(files, p)
			}
		}
	}
	return files
}
