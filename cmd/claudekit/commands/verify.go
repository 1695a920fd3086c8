package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/verify"
)

var (
	verifyScopes []string
	verifyJSON   bool
	verifyAll    bool
	verifyFix    bool
)

func init() {
	verifyCmd.Flags().StringSliceVarP(&verifyScopes, "scope", "s", nil,
		"scopes to verify (default: global, plus project when the project has CLAUDE.md or .claude/)")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false,
		"output results as JSON")
	verifyCmd.Flags().BoolVar(&verifyAll, "all", false,
		"show every check, including passed ones")
	verifyCmd.Flags().BoolVar(&verifyFix, "fix", false,
		"repair fixable issues (world-writable permissions) and re-run")
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check an installation",
	Long: `Run checks against the installed configuration:

  required-files      the expected CLAUDE.md, settings and directories exist
  config-syntax       installed JSON, YAML and TOML files parse
  content-counts      rules, skills, commands and agents installed
  claude-md-imports   @path imports in CLAUDE.md resolve
  settings            configured hook events and plaintext secrets in env
  permissions         no world-writable settings or directories

Verify does not need a bundle. Exit code 0 when no check reports an
error, 1 otherwise.`,
	Example: `  # Verify the global scope (and the project when present)
  claudekit verify

  # Include enterprise managed settings
  claudekit verify --scope global,enterprise

  # Fix permissions
  claudekit verify --fix

  See Also: claudekit install, claudekit validate`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, _ []string) error {
	layout, err := systemLayout()
	if err != nil {
		return err
	}

	scopes, err := verifyTargetScopes(layout)
	if err != nil {
		return err
	}
	return verifyWith(cmd.OutOrStdout(), verify.Target{Layout: layout, Scopes: scopes})
}

// verifyTargetScopes resolves --scope, defaulting to global plus project
// when the project directory holds assistant configuration.
func verifyTargetScopes(layout *bundle.Layout) ([]bundle.Scope, error) {
	if len(verifyScopes) > 0 {
		scopes, err := bundle.ParseScopes(verifyScopes)
		if err != nil {
			return nil, errors.NewUserError(err, "valid scopes: global, project, enterprise, both, all")
		}
		return scopes, nil
	}

	scopes := []bundle.Scope{bundle.Global}
	for _, marker := range []string{"CLAUDE.md", ".claude"} {
		if _, err := os.Stat(filepath.Join(layout.ProjectDir, marker)); err == nil {
			scopes = append(scopes, bundle.Project)
			break
		}
	}
	return scopes, nil
}

// newVerifyRunner registers every check for target.
func newVerifyRunner(target verify.Target) *verify.Runner {
	r := verify.NewRunner()
	r.AddCheck(verify.NewFileCheck(target))
	r.AddCheck(verify.NewSyntaxCheck(target))
	r.AddCheck(verify.NewCountCheck(target))
	r.AddCheck(verify.NewImportCheck(target))
	r.AddCheck(verify.NewSettingsCheck(target))
	r.AddCheck(verify.NewPermissionCheck(target))
	return r
}

func verifyWith(out io.Writer, target verify.Target) error {
	runner := newVerifyRunner(target)
	report := runner.Run()

	var fixes []verify.FixResult
	if verifyFix {
		fixes = runner.FixAll()
		if len(fixes) > 0 {
			report = runner.Run()
		}
	}

	if verifyJSON {
		doc := struct {
			*verify.Report
			Fixes []verify.FixResult `json:"fixes,omitempty"`
		}{report, fixes}
		if err := writeJSON(out, doc); err != nil {
			return err
		}
	} else {
		printFixes(out, fixes)
		printVerifyReport(out, report)
	}

	if report.HasErrors() {
		return errors.NewExitError(errors.ErrVerificationFailed, errors.ExitUser)
	}
	return nil
}

func printFixes(out io.Writer, fixes []verify.FixResult) {
	for _, f := range fixes {
		if f.Fixed {
			fmt.Fprintf(out, "%s fixed %s: %s\n", createdColor.Sprint("✓"), f.Path, f.Description)
		} else {
			fmt.Fprintf(out, "%s could not fix %s: %s\n", errorColor.Sprint("✗"), f.Path, f.Description)
		}
	}
	if len(fixes) > 0 {
		fmt.Fprintln(out)
	}
}

func printVerifyReport(out io.Writer, report *verify.Report) {
	for _, result := range report.Results {
		problem := result.Status == verify.SeverityError || result.Status == verify.SeverityWarning
		if !verifyAll && !problem && result.Status != verify.SeverityInfo {
			continue
		}

		fmt.Fprintf(out, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if problem && result.FixHint != "" {
			fmt.Fprintf(out, "  hint: %s\n", result.FixHint)
		}
	}

	fmt.Fprintf(out, "\nSummary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s verify.Severity) string {
	switch s {
	case verify.SeverityPass:
		return createdColor.Sprint("✓")
	case verify.SeverityInfo:
		return updatedColor.Sprint("ℹ")
	case verify.SeverityWarning:
		return skippedColor.Sprint("⚠")
	case verify.SeverityError:
		return errorColor.Sprint("✗")
	default:
		return "?"
	}
}
