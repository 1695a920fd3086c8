// Package commands implements the CLI commands for claudekit.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/cmd"
	"github.com/thoreinstein/claudekit/internal/config"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/logging"
)

var (
	// bundleFlag holds the value of the --bundle flag.
	bundleFlag string
	// projectFlag holds the value of the --project flag.
	projectFlag string
	// yesFlag accepts every default without prompting.
	yesFlag bool
	// configFlag names an explicit config file.
	configFlag string

	verbosity int
	quiet     bool
	logFormat string
	logFile   string
)

var (
	// cfg is the loaded configuration. Defaults are used until initConfig runs.
	cfg = config.Default()
	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
	// logCloser closes the --log-file writer; Execute closes it on return.
	logCloser io.Closer
)

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&bundleFlag, "bundle", "b", "",
		"bundle directory (default: config bundle_dir, the bootstrap dir, or the current directory)")
	pf.StringVar(&projectFlag, "project", "",
		"project directory for the project scope (default: current directory)")
	pf.BoolVarP(&yesFlag, "yes", "y", false,
		"accept defaults without prompting")
	pf.StringVar(&configFlag, "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/claudekit/config.yaml)")
	pf.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	pf.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	pf.StringVar(&logFile, "log-file", "",
		"also write logs to this file in JSON format (rotated)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("claudekit version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	configLoadErr = nil
	config.Init()
	loaded, err := config.Load(configFlag)
	if err != nil {
		configLoadErr = err
		return
	}
	cfg = loaded
}

var rootCmd = &cobra.Command{
	Use:   "claudekit",
	Short: "Install, capture, sync and verify AI assistant configuration bundles",
	Long: `claudekit manages a bundle of AI coding assistant configuration: a
directory (usually a git checkout) with global/, project/ and enterprise/
subtrees mirroring ~/.claude, a project's CLAUDE.md and .claude/ directory,
and the enterprise managed-settings directory.

It copies files between the bundle and the system with timestamped
backups, compares the two sides, verifies an installation and validates
skill documents.`,
	Example: `  # Clone or update your bundle
  GITHUB_USER=me GITHUB_REPO=dotclaude claudekit bootstrap

  # Install the global and project scopes
  claudekit install --bundle ~/dotclaude

  # See what drifted
  claudekit sync --diff

  # Check the installation
  claudekit verify`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "path" {
			return nil
		}
		if configLoadErr != nil {
			return errors.NewConfigError(configLoadErr)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("--quiet and --verbose are mutually exclusive"),
			"cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			switch os.Getenv("CLAUDEKIT_DEBUG") {
			case "1", "true":
				v = 2
			case "2":
				v = 3
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logging.Format(logFormat)
	if format != logging.FormatText && format != logging.FormatJSON {
		return errors.NewUserError(errors.Newf("unknown log format %q", logFormat),
			"use --log-format text or --log-format json")
	}

	handler := logging.NewFormatHandler(logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})

	if logFile != "" {
		w := logging.NewFileWriter(logFile)
		logCloser = w
		handler = logging.NewMultiHandler(handler, logging.NewFileHandler(w, level))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// closeLog closes the --log-file writer, if one was opened.
func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return errors.Wrap(err, "closing log file")
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context. The log file is closed whether or not the command fails.
func Execute() (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if cerr := closeLog(); err == nil {
			err = cerr
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}
