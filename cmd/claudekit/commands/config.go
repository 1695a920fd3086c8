package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/claudekit/internal/config"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/paths"
	"github.com/thoreinstein/claudekit/internal/prompt"
)

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false,
		"overwrite an existing config file")
	configCmd.AddCommand(configShowCmd, configInitCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claudekit configuration",
	Long: `Manage the claudekit configuration file.

The file is searched in the current directory and in
$XDG_CONFIG_HOME/claudekit/config.yaml. Every key can be overridden with a
CLAUDEKIT_ environment variable (CLAUDEKIT_BUNDLE_DIR, CLAUDEKIT_BACKUP_ENABLED);
bootstrap also reads GITHUB_USER, GITHUB_REPO, GITHUB_BRANCH and INSTALL_DIR.

Without a subcommand, shows the effective configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		target := configFlag
		if target == "" {
			target = paths.ConfigFile()
		}
		return writeDefaultConfig(cmd.InOrStdin(), cmd.OutOrStdout(), target, configInitForce)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := config.FileUsed()
		if p == "" {
			p = paths.ConfigFile()
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	return showConfig(cmd.OutOrStdout(), cfg, config.FileUsed())
}

func showConfig(out io.Writer, c *config.Config, file string) error {
	if file == "" {
		fmt.Fprintln(out, "# no config file, showing defaults")
	} else {
		fmt.Fprintf(out, "# %s\n", file)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	_, err = out.Write(data)
	return errors.Wrap(err, "writing output")
}

// writeDefaultConfig writes the defaults to target. An existing file is
// only replaced with force or after confirmation on a terminal.
func writeDefaultConfig(in io.Reader, out io.Writer, target string, force bool) error {
	if _, err := os.Stat(target); err == nil && !force {
		if !isInteractive(in) {
			return errors.NewUserError(errors.Newf("%s already exists", target), "pass --force to overwrite it")
		}
		ok, err := prompt.NewWithIO(in, out).Confirm("Overwrite "+target+"?", false)
		if err != nil {
			return promptError(err)
		}
		if !ok {
			return errors.NewUserError(errors.ErrCancelled, "")
		}
	}

	c := config.Default()
	if bundleFlag != "" {
		dir, err := resolveBundleDir()
		if err != nil {
			return err
		}
		c.BundleDir = dir
	}
	if err := config.Save(target, c); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(out, "%s %s\n", createdColor.Sprint("✓ wrote"), target)
	return nil
}
