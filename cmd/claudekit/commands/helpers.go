package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/copier"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
	"github.com/thoreinstein/claudekit/internal/prompt"
)

// Status line colors.
var (
	createdColor   = color.New(color.FgGreen)
	updatedColor   = color.New(color.FgCyan)
	unchangedColor = color.New(color.Faint)
	skippedColor   = color.New(color.FgYellow)
	headerColor    = color.New(color.Bold)
	errorColor     = color.New(color.FgRed)
)

// errNoBundle is returned when no bundle directory can be found.
var errNoBundle = errors.New("no bundle directory found")

// resolveBundleDir picks the bundle directory: --bundle, then the config
// bundle_dir, then the bootstrap directory or the working directory when
// they look like a bundle.
func resolveBundleDir() (string, error) {
	if bundleFlag != "" {
		return filepath.Abs(paths.ExpandHome(bundleFlag))
	}
	if cfg.BundleDir != "" {
		return filepath.Abs(cfg.BundleDir)
	}
	if dir := cfg.Bootstrap.Dir; dir != "" && bundle.Looks(dir) {
		return dir, nil
	}
	if wd, err := os.Getwd(); err == nil && bundle.Looks(wd) {
		return wd, nil
	}
	return "", errors.NewUserError(errNoBundle,
		"pass --bundle <dir>, set bundle_dir in the config, or run: claudekit bootstrap")
}

// resolveProjectDir returns the absolute --project directory, or the
// working directory.
func resolveProjectDir() (string, error) {
	if projectFlag != "" {
		return filepath.Abs(paths.ExpandHome(projectFlag))
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "getting working directory")
	}
	return wd, nil
}

// loadLayout builds the bundle layout with config overrides applied.
func loadLayout() (*bundle.Layout, error) {
	root, err := resolveBundleDir()
	if err != nil {
		return nil, err
	}
	project, err := resolveProjectDir()
	if err != nil {
		return nil, err
	}
	return newLayout(root, project), nil
}

// systemLayout is loadLayout for commands that work on the installed side
// only. Without a bundle the default managed entries are used.
func systemLayout() (*bundle.Layout, error) {
	project, err := resolveProjectDir()
	if err != nil {
		return nil, err
	}
	root, err := resolveBundleDir()
	if err != nil {
		root = ""
	}
	return newLayout(root, project), nil
}

func newLayout(root, project string) *bundle.Layout {
	l := bundle.NewLayout(root, project)
	if cfg.ClaudeDir != "" {
		l.ClaudeDir = cfg.ClaudeDir
	}
	if cfg.EnterpriseDir != "" {
		l.EnterpriseDir = cfg.EnterpriseDir
	}
	l.Ignore = append(l.Ignore, cfg.Ignore...)
	return l
}

// isInteractive reports whether prompts can be shown on in.
func isInteractive(in io.Reader) bool {
	if yesFlag {
		return false
	}
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// scopeMenu is the installation type menu shared by install and backup.
var scopeMenu = []string{"Global (~/.claude)", "Project", "Both"}

// defaultScopes is the "Both" menu choice.
var defaultScopes = []bundle.Scope{bundle.Global, bundle.Project}

// chooseScopes resolves --scope, or asks with the installation type menu
// when interactive. Non-interactive runs take the default.
func chooseScopes(p *prompt.Prompter, names []string, interactive bool, title string) ([]bundle.Scope, error) {
	if len(names) > 0 {
		scopes, err := bundle.ParseScopes(names)
		if err != nil {
			return nil, errors.NewUserError(err, "valid scopes: global, project, enterprise, both, all")
		}
		return scopes, nil
	}
	if !interactive {
		return slices.Clone(defaultScopes), nil
	}

	choice, err := p.Menu(title, scopeMenu, len(scopeMenu))
	if err != nil {
		return nil, promptError(err)
	}
	switch choice {
	case 1:
		return []bundle.Scope{bundle.Global}, nil
	case 2:
		return []bundle.Scope{bundle.Project}, nil
	default:
		return slices.Clone(defaultScopes), nil
	}
}

// askProjectDir prompts for the project directory when the project scope is
// selected interactively and --project was not given.
func askProjectDir(p *prompt.Prompter, layout *bundle.Layout, scopes []bundle.Scope, interactive bool) error {
	if !interactive || projectFlag != "" || !slices.Contains(scopes, bundle.Project) {
		return nil
	}
	dir, err := p.Input("Project directory", layout.ProjectDir)
	if err != nil {
		return promptError(err)
	}
	abs, err := filepath.Abs(paths.ExpandHome(dir))
	if err != nil {
		return errors.Wrap(err, "resolving project directory")
	}
	layout.ProjectDir = abs
	return nil
}

// promptError maps prompt failures to user errors.
func promptError(err error) error {
	if errors.Is(err, prompt.ErrCancelled) {
		return errors.NewUserError(errors.ErrCancelled, "")
	}
	if errors.Is(err, prompt.ErrInvalidSelection) {
		return errors.NewUserError(err, "enter one of the listed numbers")
	}
	return err
}

// printResult writes one colored status line for a copy result.
func printResult(w io.Writer, r copier.Result) {
	label := r.Rel
	if r.Scope != "" {
		label = string(r.Scope) + "/" + r.Rel
	}
	switch r.Outcome {
	case copier.Created:
		fmt.Fprintf(w, "  %s %s\n", createdColor.Sprint("✓ created  "), label)
	case copier.Updated:
		if r.Backup != "" {
			fmt.Fprintf(w, "  %s %s (backup: %s)\n", updatedColor.Sprint("↻ updated  "), label, filepath.Base(r.Backup))
		} else {
			fmt.Fprintf(w, "  %s %s\n", updatedColor.Sprint("↻ updated  "), label)
		}
	case copier.Unchanged:
		fmt.Fprintf(w, "  %s %s\n", unchangedColor.Sprint("= unchanged"), label)
	case copier.Skipped:
		fmt.Fprintf(w, "  %s %s (%s)\n", skippedColor.Sprint("⚠ skipped  "), label, r.Reason)
	}
}

// printSummary writes the outcome counts.
func printSummary(w io.Writer, s copier.Summary, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}
	fmt.Fprintf(w, "\n%s%d created, %d updated, %d unchanged, %d skipped, %d backup(s)\n",
		prefix, s.Created, s.Updated, s.Unchanged, s.Skipped, s.Backups)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding JSON")
}
