package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/backup"
	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/copier"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/logging"
	"github.com/thoreinstein/claudekit/internal/watch"
)

var (
	watchScopes   []string
	watchDebounce time.Duration
	watchNoBackup bool
)

func init() {
	watchCmd.Flags().StringSliceVarP(&watchScopes, "scope", "s", nil,
		"scopes to watch: global, project, enterprise, both, all (default: both)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"quiet period before changes are installed")
	watchCmd.Flags().BoolVar(&watchNoBackup, "no-backup", false,
		"do not keep timestamped copies of overwritten files")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Install bundle changes as they happen",
	Long: `Watch the bundle's scope directories and install every changed file
into the system, with the same backups as install. Runs until interrupted.`,
	Example: `  claudekit watch --scope global
  claudekit watch --debounce 2s

  See Also: claudekit install`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	layout, err := loadLayout()
	if err != nil {
		return err
	}
	scopes := defaultScopes
	if len(watchScopes) > 0 {
		if scopes, err = bundle.ParseScopes(watchScopes); err != nil {
			return errors.NewUserError(err, "valid scopes: global, project, enterprise, both, all")
		}
	}

	w := newBundleWatcher(cmd.Context(), cmd.OutOrStdout(), layout, scopes)
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (press Ctrl+C to stop)\n", layout.Root)
	if err := w.Run(cmd.Context()); err != nil {
		if errors.Is(err, watch.ErrNothingToWatch) {
			return errors.NewUserError(err, "the bundle has no "+scopeList(scopes)+" directories")
		}
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching")
	return nil
}

// newBundleWatcher returns a watcher that installs changed files of scopes.
func newBundleWatcher(ctx context.Context, out io.Writer, layout *bundle.Layout, scopes []bundle.Scope) *watch.Watcher {
	logger := logging.FromContext(ctx)

	opts := []copier.Option{copier.WithLogger(logger)}
	if cfg.Backup.Enabled && !watchNoBackup {
		opts = append(opts, copier.WithSnapshots(backup.NewManager()))
	}
	c := copier.New(layout, opts...)

	roots := make([]string, 0, len(scopes))
	for _, s := range scopes {
		roots = append(roots, layout.ScopeDir(s))
	}

	keep := func(path string) bool {
		pair, ok := layout.PairFor(path)
		return ok && slices.Contains(scopes, pair.Scope)
	}

	handle := func(_ context.Context, changed []string) error {
		var errs []error
		for _, path := range changed {
			pair, ok := layout.PairFor(path)
			if !ok {
				continue
			}
			res, err := c.CopyFile(pair.Bundle, pair.System)
			res.Scope, res.Rel = pair.Scope, pair.Rel
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if res.Outcome != copier.Unchanged {
				printResult(out, res)
			}
		}
		return errors.Join(errs...)
	}

	return watch.New(roots, handle,
		watch.WithDebounce(watchDebounce),
		watch.WithFilter(keep),
		watch.WithLogger(logger))
}

func scopeList(scopes []bundle.Scope) string {
	s := ""
	for i, sc := range scopes {
		if i > 0 {
			s += "/"
		}
		s += string(sc)
	}
	return s
}
