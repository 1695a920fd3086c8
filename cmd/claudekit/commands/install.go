package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/copier"
)

var (
	installScopes   []string
	installDryRun   bool
	installNoBackup bool
)

func init() {
	installCmd.Flags().StringSliceVarP(&installScopes, "scope", "s", nil,
		"scopes to install: global, project, enterprise, both, all (skips the menu)")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false,
		"report what would change without writing")
	installCmd.Flags().BoolVar(&installNoBackup, "no-backup", false,
		"do not keep timestamped copies of overwritten files")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Copy the bundle into the system",
	Long: `Copy bundle files into ~/.claude, the project directory or the
enterprise managed-settings directory.

A destination that exists and differs is first copied to
<name>.backup_YYYYMMDD_HHMMSS next to it. Identical files are left alone.
Without --scope an installation type menu is shown; --yes takes the
default (global and project). The enterprise scope is only installed
with --scope enterprise.`,
	Example: `  # Interactive
  claudekit install

  # Global scope only, no prompts
  claudekit install --scope global --yes

  # Preview a project install
  claudekit install --scope project --project ~/src/app --dry-run

  See Also: claudekit backup, claudekit sync, claudekit snapshot`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, _ []string) error {
	layout, err := loadLayout()
	if err != nil {
		return err
	}
	opts := transferOptions{
		scopes:    installScopes,
		dryRun:    installDryRun,
		snapshots: cfg.Backup.Enabled && !installNoBackup,
	}
	return transfer(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), layout, opts,
		copier.ToSystem, "Select installation type:")
}
