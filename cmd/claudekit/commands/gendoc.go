package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
	"github.com/thoreinstein/claudekit/pkg/frontmatter"
)

var genDocDir string

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	rootCmd.AddCommand(genDocCmd)
}

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if genDocDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "pass --dir <path>")
		}
		if err := generateDocs(genDocDir); err != nil {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
		return nil
	},
}

func generateDocs(dir string) error {
	if err := paths.EnsureDir(dir, paths.DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	rootCmd.DisableAutoGenTag = true
	return errors.Wrap(doc.GenMarkdownTreeCustom(rootCmd, dir, docFrontmatter, docLink), "generating markdown")
}

// docFrontmatter titles claudekit_snapshot_list.md as "snapshot list".
func docFrontmatter(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(strings.TrimPrefix(base, "claudekit_"), "_", " ")
	if base == "claudekit" {
		title = "claudekit"
	}

	matter := map[string]string{
		"title":       title,
		"description": "Reference for " + title,
	}
	data, err := frontmatter.Format(matter, "")
	if err != nil {
		return ""
	}
	return string(data)
}

func docLink(name string) string {
	return "./" + strings.ToLower(name)
}
