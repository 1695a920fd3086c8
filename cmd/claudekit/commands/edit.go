package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/editor"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/skill"
	"github.com/thoreinstein/claudekit/internal/validator"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit <scope/path>",
	Short: "Edit a bundle file in $EDITOR",
	Long: `Open a bundle file in $EDITOR, falling back to $VISUAL, nano and vi.
SKILL.md and rule files are validated when the editor exits.`,
	Example: `  claudekit edit global/CLAUDE.md
  EDITOR="code --wait" claudekit edit global/skills/deploy/SKILL.md`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	p, err := bundlePath(args[0])
	if err != nil {
		return err
	}
	if err := editor.Open(cmd.Context(), p, cmd.OutOrStdout()); err != nil {
		return errors.NewSystemError(err, "set $EDITOR to an installed editor")
	}

	kind, ok := skill.Classify(p)
	if !ok {
		return nil
	}

	result, err := validateDocuments([]skill.Document{{Path: p, Kind: kind}}, false)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if err := validator.NewReporter(cmd.OutOrStdout(), validator.FormatText).Report(result); err != nil {
		return err
	}
	if result.HasErrors() {
		return errors.NewExitError(errors.ErrValidationFailed, errors.ExitUser)
	}
	return nil
}
