package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Text(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name     string
		result   *Result
		contains []string
	}{
		{
			name:     "passed",
			result:   &Result{Checked: 2},
			contains: []string{"✓ Validation passed (2 file(s) checked)"},
		},
		{
			name: "errors and warnings",
			result: &Result{Issues: []Issue{
				{Severity: SeverityError, Path: "x/SKILL.md", Field: "name", Message: "invalid", Value: "Bad_Name"},
				{Severity: SeverityWarning, Field: "name", Message: "differs", Context: map[string]string{"directory": "x"}},
			}},
			contains: []string{
				"Validation failed: 1 error(s), 1 warning(s)",
				"Errors:",
				"  • x/SKILL.md: name: invalid [Bad_Name]",
				"Warnings:",
				"(directory=x)",
			},
		},
		{
			name: "warnings only",
			result: &Result{Issues: []Issue{
				{Severity: SeverityWarning, Message: "w"},
			}},
			contains: []string{"Validation passed with warnings: 1 warning(s)"},
		},
		{
			name: "long value truncated",
			result: &Result{Issues: []Issue{
				{Severity: SeverityError, Message: "long", Value: strings.Repeat("a", 100)},
			}},
			contains: []string{strings.Repeat("a", 47) + "..."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewReporter(&buf, FormatText).Report(tt.result))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestReporter_JSON(t *testing.T) {
	var buf bytes.Buffer
	result := &Result{Checked: 1}
	result.AddError("description", "required", nil)

	require.NoError(t, NewReporter(&buf, FormatJSON).Report(result))

	var decoded struct {
		Checked int `json:"checked"`
		Issues  []struct {
			Severity string `json:"severity"`
			Field    string `json:"field"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Checked)
	require.Len(t, decoded.Issues, 1)
	assert.Equal(t, "error", decoded.Issues[0].Severity)
	assert.Equal(t, "description", decoded.Issues[0].Field)
}

func TestReporter_JSONEmptyIssues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf, FormatJSON).Report(&Result{}))
	assert.Contains(t, buf.String(), `"issues": []`)
}

func TestReporter_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewReporter(&buf, FormatText).Report(nil))
	assert.Empty(t, buf.String())
}
