package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/claudekit/internal/backup"
	"github.com/thoreinstein/claudekit/internal/bundle"
	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/internal/prompt"
)

// defaultKeep is how many snapshots per file prune keeps by default.
const defaultKeep = 5

var (
	snapshotScopes []string
	snapshotJSON   bool
	snapshotKeep   int
)

func init() {
	snapshotCmd.PersistentFlags().StringSliceVarP(&snapshotScopes, "scope", "s", nil,
		"scopes to search when no file is given (default: both)")
	snapshotListCmd.Flags().BoolVar(&snapshotJSON, "json", false,
		"output in JSON format")
	snapshotPruneCmd.Flags().IntVar(&snapshotKeep, "keep", defaultKeep,
		"number of snapshots to keep per file")

	snapshotCmd.AddCommand(snapshotListCmd, snapshotRestoreCmd, snapshotPruneCmd)
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage timestamped backup copies",
	Long: `Manage the <name>.backup_YYYYMMDD_HHMMSS copies that install and sync
leave next to every file they overwrite.

Without a file argument the managed entries of the selected scopes are
searched.`,
	Example: `  # List snapshots
  claudekit snapshot list

  # Restore the newest snapshot of a file
  claudekit snapshot restore ~/.claude/settings.json

  # Restore a specific snapshot
  claudekit snapshot restore ~/.claude/settings.json 20260102_150405

  # Keep only the three newest snapshots of every file
  claudekit snapshot prune --keep 3`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list [file]",
	Short: "List snapshots",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snaps, err := findSnapshots(args)
		if err != nil {
			return err
		}
		return listSnapshots(cmd.OutOrStdout(), snaps, time.Now())
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [file] [id]",
	Short: "Restore a file from a snapshot",
	Long: `Copy a snapshot back over its original file. The current content is
snapshotted first unless it is identical, so a restore can be undone.

Without an id the newest snapshot is restored, or a fuzzy picker is shown
on a terminal. Without a file the picker lists every snapshot.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSnapshotRestore,
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune [file]",
	Short: "Remove old snapshots",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotKeep < 0 {
			return errors.NewUserError(errors.New("--keep must be non-negative"), "")
		}
		return pruneSnapshots(cmd.OutOrStdout(), args, snapshotKeep)
	},
}

// findSnapshots lists the snapshots of the named file, or of every managed
// entry in the selected scopes.
func findSnapshots(args []string) ([]backup.Snapshot, error) {
	mgr := backup.NewManager()
	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "resolving path")
		}
		snaps, err := mgr.List(path)
		if err != nil {
			return nil, errors.NewSystemError(err, "")
		}
		return snaps, nil
	}

	pairs, err := snapshotPairs()
	if err != nil {
		return nil, err
	}
	var all []backup.Snapshot
	for _, p := range pairs {
		var snaps []backup.Snapshot
		if p.Dir {
			snaps, err = mgr.ListTree(p.System)
		} else {
			snaps, err = mgr.List(p.System)
		}
		if err != nil {
			return nil, errors.NewSystemError(err, "")
		}
		all = append(all, snaps...)
	}
	return all, nil
}

// snapshotPairs returns the managed pairs of the selected scopes.
func snapshotPairs() ([]bundle.Pair, error) {
	layout, err := systemLayout()
	if err != nil {
		return nil, err
	}
	scopes := defaultScopes
	if len(snapshotScopes) > 0 {
		if scopes, err = bundle.ParseScopes(snapshotScopes); err != nil {
			return nil, errors.NewUserError(err, "valid scopes: global, project, enterprise, both, all")
		}
	}

	var pairs []bundle.Pair
	for _, s := range scopes {
		p, err := layout.Pairs(s)
		if err != nil {
			return nil, errors.NewSystemError(err, "")
		}
		pairs = append(pairs, p...)
	}
	return pairs, nil
}

func listSnapshots(w io.Writer, snaps []backup.Snapshot, now time.Time) error {
	if snapshotJSON {
		if snaps == nil {
			snaps = []backup.Snapshot{}
		}
		return writeJSON(w, snaps)
	}

	if len(snaps) == 0 {
		fmt.Fprintln(w, "No snapshots found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tID\tAGE\tSIZE")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.OriginalPath, s.ID(), backup.FormatAge(s.Time, now), s.Size)
	}
	return errors.Wrap(tw.Flush(), "writing table")
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	mgr := backup.NewManager()
	interactive := isInteractive(in)

	var path, id string
	switch len(args) {
	case 2:
		path, id = args[0], args[1]
	case 1:
		path = args[0]
	}

	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrap(err, "resolving path")
		}
		path = abs
	}

	if id == "" && interactive {
		snaps, err := findSnapshots(args[:min(len(args), 1)])
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			return errors.NewUserError(backup.ErrNoSnapshots, "run: claudekit snapshot list")
		}
		chosen, err := pickSnapshot(snaps)
		if err != nil {
			return err
		}
		path, id = chosen.OriginalPath, chosen.ID()
	}

	if path == "" {
		return errors.NewUserError(errors.New("no file given"),
			"pass the file to restore, or run on a terminal to pick a snapshot")
	}
	return restoreSnapshot(out, mgr, path, id)
}

func pickSnapshot(snaps []backup.Snapshot) (backup.Snapshot, error) {
	now := time.Now()
	idx, err := prompt.Pick(snaps,
		func(s backup.Snapshot) string {
			return fmt.Sprintf("%s  %s (%s)", s.OriginalPath, s.ID(), backup.FormatAge(s.Time, now))
		},
		func(s backup.Snapshot) string {
			data, err := os.ReadFile(s.Path)
			if err != nil {
				return err.Error()
			}
			return string(data)
		})
	if err != nil {
		return backup.Snapshot{}, promptError(err)
	}
	return snaps[idx], nil
}

func restoreSnapshot(out io.Writer, mgr *backup.Manager, path, id string) error {
	res, err := mgr.Restore(path, id)
	if err != nil {
		if errors.Is(err, backup.ErrNoSnapshots) || errors.Is(err, backup.ErrSnapshotNotFound) {
			return errors.NewUserError(err, "run: claudekit snapshot list "+path)
		}
		return errors.NewSystemError(err, "")
	}

	fmt.Fprintf(out, "%s %s from %s\n", createdColor.Sprint("✓ restored"), path, res.Restored.ID())
	if res.Saved != nil {
		fmt.Fprintf(out, "  previous content saved as %s\n", filepath.Base(res.Saved.Path))
	}
	return nil
}

func pruneSnapshots(out io.Writer, args []string, keep int) error {
	mgr := backup.NewManager()
	var removed []backup.Snapshot

	if len(args) > 0 {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return errors.Wrap(err, "resolving path")
		}
		if removed, err = mgr.Prune(path, keep); err != nil {
			return errors.NewSystemError(err, "")
		}
	} else {
		pairs, err := snapshotPairs()
		if err != nil {
			return err
		}
		for _, p := range pairs {
			var r []backup.Snapshot
			if p.Dir {
				r, err = mgr.PruneTree(p.System, keep)
			} else {
				r, err = mgr.Prune(p.System, keep)
			}
			removed = append(removed, r...)
			if err != nil {
				return errors.NewSystemError(err, "")
			}
		}
	}

	for _, s := range removed {
		fmt.Fprintf(out, "  removed %s\n", s.Path)
	}
	fmt.Fprintf(out, "Removed %d snapshot(s), kept up to %d per file\n", len(removed), keep)
	return nil
}
