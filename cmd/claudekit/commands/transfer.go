package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/thoreinstein/claudekit/internal/backup"
	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/copier"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/logging"
	"github.com/thoreinstein/claudekit/internal/prompt"
)

// transferOptions holds the flags shared by install and backup.
type transferOptions struct {
	scopes    []string
	dryRun    bool
	snapshots bool
}

// transfer copies every managed entry of the chosen scopes in direction.
// It is the body of both install and backup.
func transfer(ctx context.Context, in io.Reader, out io.Writer, layout *bundle.Layout, opts transferOptions, dir copier.Direction, title string) error {
	logger := logging.FromContext(ctx)
	interactive := isInteractive(in)
	p := prompt.NewWithIO(in, out)

	scopes, err := chooseScopes(p, opts.scopes, interactive, title)
	if err != nil {
		return err
	}
	if err := askProjectDir(p, layout, scopes, interactive); err != nil {
		return err
	}

	copts := []copier.Option{copier.WithDryRun(opts.dryRun), copier.WithLogger(logger)}
	if opts.snapshots {
		copts = append(copts, copier.WithSnapshots(backup.NewManager()))
	}
	c := copier.New(layout, copts...)

	var all []copier.Result
	for _, scope := range scopes {
		src, dst := dir.Ends(bundle.Pair{Bundle: layout.ScopeDir(scope), System: layout.TargetDir(scope)})
		fmt.Fprintf(out, "%s\n", headerColor.Sprintf("%s: %s → %s", scope, src, dst))

		results, err := c.CopyScope(scope, dir)
		for _, r := range results {
			printResult(out, r)
		}
		all = append(all, results...)
		if err != nil {
			return errors.NewSystemError(errors.Wrapf(err, "copying %s scope", scope), "")
		}
	}

	printSummary(out, copier.Summarize(all), opts.dryRun)
	logger.Info("transfer complete", "direction", dir.String(), "files", len(all))
	return nil
}
