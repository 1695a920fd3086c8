package syncer

import (
	"bytes"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/thoreinstein/claudekit/internal/errors"
	"github.com/thoreinstein/claudekit/pkg/fileutil"
)

// DiffContext is the number of context lines in a unified diff.
const DiffContext = 3

// Diff returns a unified diff from the system copy to the bundle copy of e.
// Binary files produce a one-line notice.
func Diff(e Entry) (string, error) {
	system, err := fileutil.ReadFileWithLimit(e.System)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", e.System)
	}
	bundled, err := fileutil.ReadFileWithLimit(e.Bundle)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", e.Bundle)
	}

	label := string(e.Scope) + "/" + e.Rel
	if isBinary(system) || isBinary(bundled) {
		return "Binary files " + label + " differ\n", nil
	}

	return UnifiedDiff(string(system), string(bundled), "system/"+label, "bundle/"+label)
}

// UnifiedDiff renders a unified diff between two texts.
func UnifiedDiff(from, to, fromName, toName string) (string, error) {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  DiffContext,
	})
	if err != nil {
		return "", errors.Wrap(err, "generating diff")
	}
	return out, nil
}

func isBinary(data []byte) bool {
	if len(data) > 8000 {
		data = data[:8000]
	}
	return bytes.IndexByte(data, 0) >= 0
}
