package verify

import (
	"fmt"
	"os"
	"strings"
)

// Severity indicates the importance level of a check result.
type Severity int

const (
	// SeverityPass indicates the check passed without issues.
	SeverityPass Severity = iota

	// SeverityInfo indicates informational output, not a problem.
	SeverityInfo

	// SeverityWarning indicates a potential issue that doesn't prevent operation.
	SeverityWarning

	// SeverityError indicates a problem that prevents proper operation.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityPass:
		return "pass"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult represents the outcome of a single check.
type CheckResult struct {
	// Name is the identifier for this check.
	Name string `json:"name"`

	// Category groups related checks (e.g., "files", "config").
	Category string `json:"category"`

	// Status indicates the severity of the check result.
	Status Severity `json:"status"`

	// Message describes the check outcome.
	Message string `json:"message"`

	// Details contains additional context about the check result.
	// Keys and values depend on the specific check.
	Details map[string]any `json:"details,omitempty"`

	// Fixable indicates whether `verify --fix` can repair this issue.
	Fixable bool `json:"fixable,omitempty"`

	// FixHint provides guidance on how to resolve the issue.
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary aggregates counts of check results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// finding is one problem discovered by a check.
type finding struct {
	Path     string   `json:"path"`
	Problem  string   `json:"problem"`
	Severity Severity `json:"severity"`
}

// worst returns the highest severity among findings, or SeverityPass.
func worst(findings []finding) Severity {
	s := SeverityPass
	for _, f := range findings {
		if f.Severity > s {
			s = f.Severity
		}
	}
	return s
}

// resultFrom builds a CheckResult from findings. passMsg is used when there
// are none.
func resultFrom(c Check, findings []finding, passMsg string) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   worst(findings),
		Message:  passMsg,
	}
	if len(findings) == 0 {
		return result
	}

	problems := make([]string, 0, len(findings))
	for _, f := range findings {
		problems = append(problems, f.Path+": "+f.Problem)
	}
	result.Message = fmt.Sprintf("%d issue(s): %s", len(findings), strings.Join(problems, "; "))
	result.Details = map[string]any{"issues": findings}
	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}
