package backup

import (
	"strconv"
	"strings"
	"time"

	"github.com/thoreinstein/claudekit/internal/errors"
)

const (
	// Marker separates the original file name from the snapshot ID.
	Marker = ".backup_"
	// TimeLayout is the timestamp format of snapshot IDs.
	TimeLayout = "20060102_150405"
)

// Sentinel errors for snapshot operations.
var (
	// ErrNoSnapshots indicates a file has no snapshots.
	ErrNoSnapshots = errors.New("no snapshots found")

	// ErrSnapshotNotFound indicates the requested snapshot ID does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrNotRegularFile indicates an attempt to snapshot a directory or device.
	ErrNotRegularFile = errors.New("not a regular file")
)

// Name is a parsed snapshot file name.
type Name struct {
	// Original is the file name the snapshot was taken of.
	Original string `json:"original"`
	// Time is the snapshot timestamp in local time.
	Time time.Time `json:"time"`
	// Seq is the same-second collision counter; 0 for the first snapshot.
	Seq int `json:"seq,omitempty"`
}

// ID returns the part of the file name after the marker.
func (n Name) ID() string {
	id := n.Time.Format(TimeLayout)
	if n.Seq > 0 {
		id += "." + strconv.Itoa(n.Seq)
	}
	return id
}

// String returns the snapshot file name.
func (n Name) String() string {
	return n.Original + Marker + n.ID()
}

// ParseName splits a snapshot file name such as
// "foo.json.backup_20260101_120000" into its parts. It reports false for
// names that are not snapshots.
func ParseName(name string) (Name, bool) {
	idx := strings.LastIndex(name, Marker)
	if idx <= 0 {
		return Name{}, false
	}

	rest := name[idx+len(Marker):]
	stamp, seqStr, hasSeq := strings.Cut(rest, ".")
	if len(stamp) != len(TimeLayout) {
		return Name{}, false
	}
	ts, err := time.ParseInLocation(TimeLayout, stamp, time.Local)
	if err != nil {
		return Name{}, false
	}

	seq := 0
	if hasSeq {
		seq, err = strconv.Atoi(seqStr)
		if err != nil || seq < 1 {
			return Name{}, false
		}
	}

	return Name{Original: name[:idx], Time: ts, Seq: seq}, true
}

// Snapshot is one backup copy on disk.
type Snapshot struct {
	Name
	// Path is the absolute path of the snapshot file.
	Path string `json:"path"`
	// OriginalPath is the file the snapshot restores to.
	OriginalPath string `json:"original_path"`
	// Size is the snapshot size in bytes.
	Size int64 `json:"size"`
}

// RestoreResult describes a completed restore.
type RestoreResult struct {
	// Restored is the snapshot copied back over the original.
	Restored Snapshot
	// Saved is the snapshot of the content that was replaced, or nil when the
	// original was missing or already identical.
	Saved *Snapshot
}

// newer orders snapshots newest first.
func newer(a, b Snapshot) int {
	if c := b.Time.Compare(a.Time); c != 0 {
		return c
	}
	return b.Seq - a.Seq
}
