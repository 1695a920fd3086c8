package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/skill"
	"github.com/thoreinstein/claudekit/internal/validator"
)

var (
	validateStrict bool
	validateJSON   bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"treat allowed-tools syntax problems as errors")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"output results as JSON")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [path...]",
	Short: "Validate SKILL.md and rule documents",
	Long: `Validate skill documents (SKILL.md) and rule documents (Markdown files
below a rules/ directory).

A SKILL.md must start with YAML frontmatter delimited by '---' lines, with
a lowercase name (a-z, 0-9 and hyphens, at most 64 characters) and a
non-blank description of at most 1024 characters. A name that differs
from its directory is a warning.

A rule may carry frontmatter with a paths list of glob patterns.

Without arguments every scope of the bundle is searched. Exit code 0 when
no errors are found, 1 otherwise.`,
	Example: `  # Validate the whole bundle
  claudekit validate

  # Validate one skill
  claudekit validate global/skills/deploy/SKILL.md

  # Validate installed skills
  claudekit validate ~/.claude/skills

  See Also: claudekit verify, claudekit edit`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	roots := args
	if len(roots) == 0 {
		root, err := resolveBundleDir()
		if err != nil {
			return err
		}
		layout := newLayout(root, "")
		for _, s := range bundle.Scopes {
			roots = append(roots, layout.ScopeDir(s))
		}
	}
	return validateWith(cmd.OutOrStdout(), roots)
}

func validateWith(out io.Writer, roots []string) error {
	docs, err := skill.Discover(roots)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}

	if len(docs) == 0 && !validateJSON {
		fmt.Fprintln(out, "No SKILL.md or rule files found.")
		return nil
	}

	result, err := validateDocuments(docs, validateStrict)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if err := validator.NewReporter(out, format).Report(result); err != nil {
		return err
	}

	if result.HasErrors() {
		return errors.NewExitError(errors.ErrValidationFailed, errors.ExitUser)
	}
	return nil
}

// validateDocuments validates every document and merges the results.
func validateDocuments(docs []skill.Document, strict bool) (*validator.Result, error) {
	v := skill.NewValidator(skill.WithStrict(strict))
	merged := &validator.Result{}

	for _, doc := range docs {
		var (
			res *validator.Result
			err error
		)
		switch doc.Kind {
		case skill.KindRule:
			res, err = skill.ValidateRuleFile(doc.Path)
		default:
			res, err = v.ValidateFile(doc.Path)
		}
		if err != nil {
			return nil, err
		}
		merged.Merge(doc.Path, res)
	}
	return merged, nil
}
