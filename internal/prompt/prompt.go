// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/claudekit/internal/errors"
)

// Sentinel errors for prompts.
var (
	ErrNoOptions        = errors.New("no options to select from")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrCancelled        = errors.New("selection cancelled")
)

// Prompter reads answers from a reader and writes questions to a writer.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewWithIO creates a Prompter with custom reader and writer.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), writer: w}
}

// readLine returns the next trimmed line. A final line without a newline
// is accepted; EOF with no input is ErrCancelled.
func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrCancelled
		}
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

// Menu prints a numbered menu and returns the chosen 1-based index.
// An empty answer selects def.
//
//	Select installation type:
//	  1) Global (~/.claude)
//	  2) Project
//	Select (1-2) [default: 2]:
func (p *Prompter) Menu(title string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if def < 1 || def > len(options) {
		def = len(options)
	}

	fmt.Fprintln(p.writer, title)
	for i, opt := range options {
		fmt.Fprintf(p.writer, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintf(p.writer, "Select (1-%d) [default: %d]: ", len(options), def)

	input, err := p.readLine()
	if err != nil {
		return 0, err
	}
	if input == "" {
		return def, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if selection < 1 || selection > len(options) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(options))
	}
	return selection, nil
}

// Input asks for a line of text. An empty answer returns def.
func (p *Prompter) Input(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.writer, "%s [default: %s]: ", label, def)
	} else {
		fmt.Fprintf(p.writer, "%s: ", label)
	}

	input, err := p.readLine()
	if err != nil {
		return "", err
	}
	if input == "" {
		return def, nil
	}
	return input, nil
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.writer, "%s [%s]: ", question, hint)

	input, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, errors.Wrapf(ErrInvalidSelection, "%q is not yes or no", input)
	}
}

// Pick opens a fuzzy finder over items and returns the chosen index.
// preview may be nil. Aborting the finder returns ErrCancelled.
func Pick[T any](items []T, label func(T) string, preview func(T) string) (int, error) {
	if len(items) == 0 {
		return 0, ErrNoOptions
	}

	opts := []fuzzyfinder.Option{}
	if preview != nil {
		opts = append(opts, fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(items[i])
		}))
	}

	idx, err := fuzzyfinder.Find(items, func(i int) string { return label(items[i]) }, opts...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return 0, ErrCancelled
		}
		return 0, errors.Wrap(err, "interactive selection failed")
	}
	return idx, nil
}
