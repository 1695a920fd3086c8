package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// SyntaxCheck parses every installed JSON, YAML and TOML file. JSON
// failures are errors; YAML and TOML failures are warnings.
type SyntaxCheck struct {
	target Target
}

var _ Check = (*SyntaxCheck)(nil)

// NewSyntaxCheck creates a SyntaxCheck for target.
func NewSyntaxCheck(target Target) *SyntaxCheck {
	return &SyntaxCheck{target: target}
}

// Name returns the unique identifier for this check.
func (c *SyntaxCheck) Name() string {
	return "config-syntax"
}

// Category returns the grouping for this check.
func (c *SyntaxCheck) Category() string {
	return "config"
}

// Run parses each structured file found in the installed scope trees.
func (c *SyntaxCheck) Run() *CheckResult {
	var findings []finding
	checked := 0

	for _, scope := range c.target.Scopes {
		files, err := c.target.installedFiles(scope)
		if err != nil {
			findings = append(findings, finding{
				Path:     c.target.Layout.TargetDir(scope),
				Problem:  err.Error(),
				Severity: SeverityError,
			})
			continue
		}

		for _, path := range files {
			validate, severity := validatorFor(path)
			if validate == nil {
				continue
			}
			checked++
			if msg := validateFile(path, validate); msg != "" {
				findings = append(findings, finding{Path: path, Problem: msg, Severity: severity})
			}
		}
	}

	if checked == 0 && len(findings) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "no config files found to validate",
		}
	}

	result := resultFrom(c, findings, fmt.Sprintf("%d config file(s) validated successfully", checked))
	if result.Status >= SeverityWarning {
		result.FixHint = "review the error details and fix the syntax in each file"
	}
	return result
}

type syntaxValidator func(data []byte) string

// validatorFor returns the parser for path and the severity of a failure.
func validatorFor(path string) (syntaxValidator, Severity) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return validateJSON, SeverityError
	case ".yaml", ".yml":
		return validateYAML, SeverityWarning
	case ".toml":
		return validateTOML, SeverityWarning
	default:
		return nil, SeverityPass
	}
}

// validateFile returns a problem description, or "" when the file parses.
func validateFile(path string, validate syntaxValidator) string {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return fmt.Sprintf("read error: %v", err)
	}
	return validate(data)
}

// validateJSON rejects empty input, which no JSON parser accepts.
func validateJSON(data []byte) string {
	if len(bytes.TrimSpace(data)) == 0 {
		return "JSON error: unexpected end of input"
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return formatJSONError(err, data)
	}
	return ""
}

func validateYAML(data []byte) string {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return fmt.Sprintf("YAML error: %v", err)
	}
	return ""
}

func validateTOML(data []byte) string {
	var v any
	if err := toml.Unmarshal(data, &v); err != nil {
		return formatTOMLError(err)
	}
	return ""
}

// formatJSONError extracts position information from JSON syntax errors.
func formatJSONError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}
	return fmt.Sprintf("JSON error: %v", err)
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
	}
	return fmt.Sprintf("TOML error: %v", err)
}

// offsetToLineCol converts a byte offset to 1-indexed line and column numbers.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	offset = min(max(offset, 0), len(data))

	line = 1
	lineStart := 0
	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}
