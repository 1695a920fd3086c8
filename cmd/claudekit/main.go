// Package main is the entry point for the claudekit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/claudekit/cmd/claudekit/commands"
	"github.com/thoreinstein/claudekit/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if s := errors.Suggestion(err); s != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", s)
	}
	os.Exit(errors.ExitCode(err))
}
