package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/config"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/git"
	"github.com/thoreinstein/claudekit/internal/logging"
	"github.com/thoreinstein/claudekit/internal/paths"
)

var (
	bootstrapUser   string
	bootstrapRepo   string
	bootstrapBranch string
	bootstrapDir    string
)

func init() {
	bootstrapCmd.Flags().StringVar(&bootstrapUser, "user", "",
		"GitHub user that owns the bundle repository (env: GITHUB_USER)")
	bootstrapCmd.Flags().StringVar(&bootstrapRepo, "repo", "",
		"bundle repository name or clone URL (env: GITHUB_REPO)")
	bootstrapCmd.Flags().StringVar(&bootstrapBranch, "branch", "",
		"branch to clone (env: GITHUB_BRANCH, default: main)")
	bootstrapCmd.Flags().StringVar(&bootstrapDir, "dir", "",
		"where to clone the bundle (env: INSTALL_DIR)")
	rootCmd.AddCommand(bootstrapCmd)
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Clone or update the bundle repository",
	Long: `Clone the bundle from https://github.com/<user>/<repo>.git, or pull
with --ff-only when the install directory already holds a git checkout.

Values come from flags, then the environment (GITHUB_USER, GITHUB_REPO,
GITHUB_BRANCH, INSTALL_DIR), then the bootstrap section of the config.
--repo may also be a full clone URL, in which case --user is not needed.`,
	Example: `  GITHUB_USER=me GITHUB_REPO=dotclaude claudekit bootstrap
  claudekit bootstrap --repo git@github.com:me/dotclaude.git --dir ~/dotclaude

  See Also: claudekit install`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return bootstrapWith(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), bootstrapSettings())
	},
}

// bootstrapSettings merges flags over the loaded bootstrap config.
func bootstrapSettings() config.BootstrapConfig {
	b := cfg.Bootstrap
	if bootstrapUser != "" {
		b.User = bootstrapUser
	}
	if bootstrapRepo != "" {
		b.Repo = bootstrapRepo
	}
	if bootstrapBranch != "" {
		b.Branch = bootstrapBranch
	}
	if bootstrapDir != "" {
		b.Dir = paths.ExpandHome(bootstrapDir)
	}
	if b.Branch == "" {
		b.Branch = config.DefaultBranch
	}
	if b.Dir == "" {
		b.Dir = paths.DefaultBundleDir()
	}
	return b
}

// cloneURL returns the clone URL for b.
func cloneURL(b config.BootstrapConfig) (string, error) {
	if git.IsURL(b.Repo) {
		return b.Repo, nil
	}
	if b.User == "" || b.Repo == "" {
		return "", errors.NewUserError(errors.New("bundle repository not configured"),
			"set GITHUB_USER and GITHUB_REPO, or pass --user and --repo")
	}
	return git.GitHubURL(b.User, b.Repo), nil
}

func bootstrapWith(ctx context.Context, out, errOut io.Writer, b config.BootstrapConfig) error {
	logger := logging.FromContext(ctx)
	client := git.New(out, errOut)

	dir, err := filepath.Abs(b.Dir)
	if err != nil {
		return errors.Wrap(err, "resolving install directory")
	}

	if git.IsRepo(dir) {
		fmt.Fprintf(out, "Updating %s\n", dir)
		if err := client.Pull(ctx, dir); err != nil {
			return errors.NewSystemError(err, "resolve the conflict in "+dir+" and run bootstrap again")
		}
	} else {
		url, err := cloneURL(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cloning %s (%s) into %s\n", url, b.Branch, dir)
		if err := paths.EnsureDir(filepath.Dir(dir), paths.DefaultDirPerm); err != nil {
			return errors.NewSystemError(errors.Wrap(err, "creating parent directory"), "")
		}
		if err := client.Clone(ctx, url, b.Branch, dir); err != nil {
			if errors.Is(err, git.ErrInvalidURL) {
				return errors.NewUserError(err, "check --repo")
			}
			return errors.NewSystemError(err, "check the repository name, branch and your access")
		}
	}
	logger.Info("bundle ready", "dir", dir)

	fmt.Fprintf(out, "\n%s\n  claudekit install --bundle %s\n", headerColor.Sprint("Next step:"), dir)
	return nil
}
