package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/logging"
)

// saveLogFlags restores the logging flags after the test.
func saveLogFlags(t *testing.T) {
	t.Helper()
	origVerbosity, origQuiet, origFormat, origFile := verbosity, quiet, logFormat, logFile
	t.Cleanup(func() {
		verbosity, quiet, logFormat, logFile = origVerbosity, origQuiet, origFormat, origFile
		if logCloser != nil {
			_ = logCloser.Close()
			logCloser = nil
		}
	})
}

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	saveLogFlags(t)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLAUDEKIT_DEBUG", "")
			verbosity = tt.verbosity
			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel), "level %v enabled", tt.wantLevel)
			if tt.wantLevel > logging.LevelTrace {
				assert.False(t, logger.Enabled(t.Context(), tt.wantLevel-4), "level %v disabled", tt.wantLevel-4)
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	saveLogFlags(t)

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"CLAUDEKIT_DEBUG=1", "1", slog.LevelDebug},
		{"CLAUDEKIT_DEBUG=true", "true", slog.LevelDebug},
		{"CLAUDEKIT_DEBUG=2", "2", logging.LevelTrace},
		{"CLAUDEKIT_DEBUG=0", "0", slog.LevelWarn},
		{"CLAUDEKIT_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("CLAUDEKIT_DEBUG", tt.envVal)
			require.NoError(t, setupLogging(rootCmd))

			logger := slog.Default()
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel))
			if tt.wantLevel == slog.LevelDebug {
				assert.False(t, logger.Enabled(t.Context(), logging.LevelTrace))
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	saveLogFlags(t)
	t.Setenv("CLAUDEKIT_DEBUG", "2")
	verbosity = 1

	require.NoError(t, setupLogging(rootCmd))

	logger := slog.Default()
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug), "flag overrides env var")
}

func TestSetupLogging_Quiet(t *testing.T) {
	saveLogFlags(t)
	quiet = true
	verbosity = 0

	require.NoError(t, setupLogging(rootCmd))

	logger := slog.Default()
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelWarn))
}

func TestSetupLogging_QuietMutualExclusion(t *testing.T) {
	saveLogFlags(t)
	verbosity = 1
	quiet = true

	err := setupLogging(rootCmd)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestSetupLogging_UnknownFormat(t *testing.T) {
	saveLogFlags(t)
	logFormat = "xml"

	err := setupLogging(rootCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestSetupLogging_LogFile(t *testing.T) {
	saveLogFlags(t)
	logFile = filepath.Join(t.TempDir(), "claudekit.log")
	verbosity = 1

	require.NoError(t, setupLogging(rootCmd))
	require.NotNil(t, logCloser)

	slog.Info("hello from test")
	require.NoError(t, logCloser.Close())
	logCloser = nil

	assert.Contains(t, readFile(t, logFile), `"msg":"hello from test"`)
}

func TestExecute_ClosesLogFileOnError(t *testing.T) {
	saveLogFlags(t)
	resetGlobals(t)
	origLogger, origConfig := slog.Default(), configFlag
	t.Cleanup(func() {
		slog.SetDefault(origLogger)
		configFlag = origConfig
		rootCmd.SetArgs(nil)
	})

	failing := &cobra.Command{
		Use: "fail-for-test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			slog.Warn("about to fail")
			return errors.New("command failed")
		},
	}
	rootCmd.AddCommand(failing)
	t.Cleanup(func() { rootCmd.RemoveCommand(failing) })

	dir := t.TempDir()
	path := filepath.Join(dir, "claudekit.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("version: 1\n"), 0o644))
	rootCmd.SetArgs([]string{"--config", cfgPath, "--log-file", path, "fail-for-test"})

	err := Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command failed")
	assert.Nil(t, logCloser, "log file is closed after a failed command")
	assert.Contains(t, readFile(t, path), `"msg":"about to fail"`)
}

func TestCloseLog_NoFile(t *testing.T) {
	saveLogFlags(t)
	logCloser = nil
	assert.NoError(t, closeLog())
}
