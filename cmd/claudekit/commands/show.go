package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
	"github.com/thoreinstein/claudekit/pkg/frontmatter"
)

// defaultWidth is the wrap width when the terminal size is unknown.
const defaultWidth = 80

var showRaw bool

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false,
		"print the file without rendering")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <scope/path>",
	Short: "Render a bundle document",
	Long: `Render a Markdown document from the bundle. The path is relative to the
bundle root and starts with the scope, for example global/CLAUDE.md.

Output is rendered when stdout is a terminal and printed as is otherwise.
Frontmatter is shown as a YAML block.`,
	Example: `  claudekit show global/CLAUDE.md
  claudekit show global/skills/deploy/SKILL.md --raw`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := bundlePath(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return showDocument(out, path, !showRaw && isTerminal(out))
	},
}

// bundlePath maps a scope-prefixed bundle path to an existing file.
func bundlePath(rel string) (string, error) {
	root, err := resolveBundleDir()
	if err != nil {
		return "", err
	}
	scope, inner, err := bundle.Locate(rel)
	if err != nil {
		return "", errors.NewUserError(err, "paths start with global/, project/ or enterprise/")
	}
	path := filepath.Join(root, string(scope), filepath.FromSlash(inner))

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "%s", path), "run: claudekit sync to list bundle files")
	}
	if info.IsDir() {
		return "", errors.NewUserError(errors.Newf("%s is a directory", path), "")
	}
	return path, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

// markdownSource moves frontmatter into a fenced YAML block.
func markdownSource(data []byte) []byte {
	matter, body, err := frontmatter.Split(data)
	if err != nil {
		return data
	}
	var buf bytes.Buffer
	buf.WriteString("```yaml\n")
	buf.Write(matter)
	if len(matter) > 0 && matter[len(matter)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteString("```\n\n")
	buf.Write(body)
	return buf.Bytes()
}

func showDocument(out io.Writer, path string, render bool) error {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if !render {
		_, err := out.Write(data)
		return errors.Wrap(err, "writing output")
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(terminalWidth(out)-4, 20)),
	)
	if err != nil {
		return errors.Wrap(err, "creating renderer")
	}
	rendered, err := r.RenderBytes(markdownSource(data))
	if err != nil {
		return errors.Wrap(err, "rendering markdown")
	}
	_, err = fmt.Fprint(out, string(rendered))
	return errors.Wrap(err, "writing output")
}
