package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/copier"
)

var (
	backupScopes   []string
	backupDryRun   bool
	backupSnapshot bool
)

func init() {
	backupCmd.Flags().StringSliceVarP(&backupScopes, "scope", "s", nil,
		"scopes to capture: global, project, enterprise, both, all (skips the menu)")
	backupCmd.Flags().BoolVar(&backupDryRun, "dry-run", false,
		"report what would change without writing")
	backupCmd.Flags().BoolVar(&backupSnapshot, "snapshot", false,
		"keep timestamped copies of overwritten bundle files")
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Capture the system configuration into the bundle",
	Long: `Copy the installed configuration back into the bundle, the inverse of
install. Missing system files are skipped with a warning.

Bundle files are overwritten in place; the bundle is expected to be under
version control. Pass --snapshot to keep timestamped copies anyway.`,
	Example: `  # Capture global and project configuration
  claudekit backup --yes

  # Capture only ~/.claude
  claudekit backup --scope global

  See Also: claudekit install, claudekit sync`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func runBackup(cmd *cobra.Command, _ []string) error {
	layout, err := loadLayout()
	if err != nil {
		return err
	}
	opts := transferOptions{
		scopes:    backupScopes,
		dryRun:    backupDryRun,
		snapshots: backupSnapshot,
	}
	return transfer(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), layout, opts,
		copier.ToBundle, "Select backup type:")
}
