package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/backup"
	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/copier"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/logging"
	"github.com/thoreinstein/claudekit/internal/prompt"
	"github.com/thoreinstein/claudekit/internal/syncer"
)

// syncDirection is the sync menu choice.
type syncDirection int

const (
	syncToSystem syncDirection = iota + 1
	syncToBundle
	syncCompareOnly
)

var syncMenu = []string{"Bundle → System", "System → Bundle", "Compare only"}

var (
	syncScopes   []string
	syncDirFlag  string
	syncDiff     bool
	syncJSON     bool
	syncDryRun   bool
	syncNoBackup bool
)

func init() {
	syncCmd.Flags().StringSliceVarP(&syncScopes, "scope", "s", nil,
		"scopes to compare: global, project, enterprise, both, all (default: both)")
	syncCmd.Flags().StringVarP(&syncDirFlag, "direction", "d", "",
		"to-system, to-bundle or compare (skips the menu)")
	syncCmd.Flags().BoolVar(&syncDiff, "diff", false,
		"print a unified diff for each differing file")
	syncCmd.Flags().BoolVar(&syncJSON, "json", false,
		"output the comparison as JSON")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false,
		"report what would be copied without writing")
	syncCmd.Flags().BoolVar(&syncNoBackup, "no-backup", false,
		"do not keep timestamped copies of overwritten files")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Compare the bundle with the system and copy differences",
	Long: `Compare every managed file of the bundle with its installed copy and
classify it as identical, different, bundle-only or system-only.

Then copy in one direction:
  1) Bundle → System   copies different and bundle-only files
  2) System → Bundle   copies different and system-only files
  3) Compare only      writes nothing (default)

Overwritten system files are backed up first.`,
	Example: `  # Show drift with diffs
  claudekit sync --diff

  # Push bundle changes without prompting
  claudekit sync --direction to-system --yes

  # Machine-readable comparison
  claudekit sync --json

  See Also: claudekit install, claudekit backup`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

// parseDirection accepts the menu number or a name.
func parseDirection(s string) (syncDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "to-system", "system", "bundle-to-system":
		return syncToSystem, nil
	case "2", "to-bundle", "bundle", "system-to-bundle":
		return syncToBundle, nil
	case "3", "compare", "compare-only", "none":
		return syncCompareOnly, nil
	default:
		return 0, errors.NewUserError(errors.Newf("unknown direction %q", s),
			"use --direction to-system, to-bundle or compare")
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	layout, err := loadLayout()
	if err != nil {
		return err
	}
	return syncWith(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), layout)
}

// syncResult is the JSON output of sync.
type syncResult struct {
	Report  *syncer.Report  `json:"report"`
	Copied  []copier.Result `json:"copied,omitempty"`
	Summary *copier.Summary `json:"summary,omitempty"`
}

func syncWith(ctx context.Context, in io.Reader, out io.Writer, layout *bundle.Layout) error {
	logger := logging.FromContext(ctx)

	scopes := defaultScopes
	if len(syncScopes) > 0 {
		parsed, err := bundle.ParseScopes(syncScopes)
		if err != nil {
			return errors.NewUserError(err, "valid scopes: global, project, enterprise, both, all")
		}
		scopes = parsed
	}

	report, err := syncer.Compare(layout, scopes)
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	direction := syncCompareOnly
	if syncDirFlag != "" {
		if direction, err = parseDirection(syncDirFlag); err != nil {
			return err
		}
	}

	if syncJSON {
		res := &syncResult{Report: report}
		if err := applySync(ctx, io.Discard, layout, report, direction, res); err != nil {
			return err
		}
		return writeJSON(out, res)
	}

	printComparison(out, report)
	if err := printDiffs(out, report); err != nil {
		return err
	}
	logger.Debug("compared", "entries", len(report.Entries), "in_sync", report.InSync())

	if syncDirFlag == "" && !report.InSync() && isInteractive(in) {
		choice, err := prompt.NewWithIO(in, out).Menu("Sync direction:", syncMenu, int(syncCompareOnly))
		if err != nil {
			return promptError(err)
		}
		direction = syncDirection(choice)
	}
	return applySync(ctx, out, layout, report, direction, nil)
}

// applySync copies the entries selected by direction. res, when set,
// collects the results for JSON output.
func applySync(ctx context.Context, out io.Writer, layout *bundle.Layout, report *syncer.Report, direction syncDirection, res *syncResult) error {
	var dir copier.Direction
	switch direction {
	case syncToSystem:
		dir = copier.ToSystem
	case syncToBundle:
		dir = copier.ToBundle
	default:
		return nil
	}

	opts := []copier.Option{copier.WithDryRun(syncDryRun), copier.WithLogger(logging.FromContext(ctx))}
	if dir == copier.ToSystem && cfg.Backup.Enabled && !syncNoBackup {
		opts = append(opts, copier.WithSnapshots(backup.NewManager()))
	}
	c := copier.New(layout, opts...)

	fmt.Fprintf(out, "\n%s\n", headerColor.Sprintf("Copying %s", dir))
	results, err := syncer.Apply(c, report, dir)
	for _, r := range results {
		printResult(out, r)
	}
	summary := copier.Summarize(results)
	if res != nil {
		res.Copied = results
		res.Summary = &summary
	}
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	printSummary(out, summary, syncDryRun)
	return nil
}

var statusStyle = map[syncer.Status]struct {
	mark  string
	color *color.Color
}{
	syncer.Different:  {"≠", color.New(color.FgYellow)},
	syncer.BundleOnly: {"+", color.New(color.FgGreen)},
	syncer.SystemOnly: {"-", color.New(color.FgRed)},
}

// printComparison lists every non-identical entry and the counts.
func printComparison(out io.Writer, report *syncer.Report) {
	for _, e := range report.Entries {
		style, ok := statusStyle[e.Status]
		if !ok {
			continue
		}
		label := fmt.Sprintf("%s %-11s", style.mark, e.Status)
		fmt.Fprintf(out, "  %s %s/%s\n", style.color.Sprint(label), e.Scope, e.Rel)
	}

	c := report.Counts
	if report.InSync() {
		fmt.Fprintf(out, "✓ In sync (%d file(s) identical)\n", c.Identical)
		return
	}
	fmt.Fprintf(out, "\n%d identical, %d different, %d bundle-only, %d system-only\n",
		c.Identical, c.Different, c.BundleOnly, c.SystemOnly)
}

// printDiffs writes a unified diff per differing entry when --diff is set.
func printDiffs(out io.Writer, report *syncer.Report) error {
	if !syncDiff {
		return nil
	}
	for _, e := range report.Entries {
		if e.Status != syncer.Different {
			continue
		}
		d, err := syncer.Diff(e)
		if err != nil {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintf(out, "\n%s", d)
	}
	return nil
}
