package commands

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudekit/pkg/frontmatter"
)

func TestDocFrontmatter(t *testing.T) {
	tests := []struct {
		file  string
		title string
	}{
		{"/docs/claudekit.md", "claudekit"},
		{"/docs/claudekit_install.md", "install"},
		{"/docs/claudekit_snapshot_list.md", "snapshot list"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			var matter struct {
				Title       string `yaml:"title"`
				Description string `yaml:"description"`
			}
			_, err := frontmatter.MustParse(strings.NewReader(docFrontmatter(tt.file)), &matter)
			require.NoError(t, err)
			assert.Equal(t, tt.title, matter.Title)
			assert.Equal(t, "Reference for "+tt.title, matter.Description)
		})
	}
}

func TestGenerateDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reference")
	require.NoError(t, generateDocs(dir))

	for _, name := range []string{"claudekit.md", "claudekit_install.md", "claudekit_snapshot_restore.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.Contains(t, readFile(t, filepath.Join(dir, "claudekit_sync.md")), "title: sync")
	assert.NoFileExists(t, filepath.Join(dir, "claudekit_gen-doc.md"), "hidden commands are skipped")
}
