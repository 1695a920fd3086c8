package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantErrors int
	}{
		{"no frontmatter", "# Style\n\nUse gofmt.\n", 0},
		{"list of patterns", "---\npaths:\n  - \"**/*.go\"\n  - \"cmd/**\"\n---\nbody\n", 0},
		{"single pattern", "---\npaths: \"src/**/*.ts\"\n---\n", 0},
		{"invalid pattern", "---\npaths:\n  - \"src/[a-\"\n---\n", 1},
		{"empty pattern", "---\npaths:\n  - \"\"\n---\n", 1},
		{"paths wrong type", "---\npaths:\n  key: value\n---\n", 1},
		{"unterminated", "---\npaths:\n  - \"*.go\"\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ValidateRule([]byte(tt.content))
			assert.Len(t, r.Errors(), tt.wantErrors, "issues: %v", r.Issues)
		})
	}
}

func TestValidateRuleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.md")
	require.NoError(t, os.WriteFile(path, []byte("---\npaths: [\"**/*.go\"]\n---\n"), 0o644))

	r, err := ValidateRuleFile(path)
	require.NoError(t, err)
	assert.False(t, r.HasErrors())
}
