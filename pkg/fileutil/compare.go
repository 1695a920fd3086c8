package fileutil

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/thoreinstein/claudekit/internal/errors"
)

const compareChunk = 32 * 1024

// SameContent reports whether two files hold identical bytes.
// Sizes are compared first so most differing files are rejected without reading.
func SameContent(a, b string) (bool, error) {
	fa, err := os.Open(a)
	if err != nil {
		return false, errors.Wrapf(err, "opening %s", a)
	}
	defer fa.Close()

	fb, err := os.Open(b)
	if err != nil {
		return false, errors.Wrapf(err, "opening %s", b)
	}
	defer fb.Close()

	ia, err := fa.Stat()
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", a)
	}
	ib, err := fb.Stat()
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", b)
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	ra := bufio.NewReaderSize(fa, compareChunk)
	rb := bufio.NewReaderSize(fb, compareChunk)
	bufA := make([]byte, compareChunk)
	bufB := make([]byte, compareChunk)
	for {
		na, errA := io.ReadFull(ra, bufA)
		nb, errB := io.ReadFull(rb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if doneA || doneB {
			return doneA && doneB, nil
		}
		if errA != nil {
			return false, errors.Wrapf(errA, "reading %s", a)
		}
		if errB != nil {
			return false, errors.Wrapf(errB, "reading %s", b)
		}
	}
}
