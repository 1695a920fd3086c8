// Package cmd contains build-time variables injected via ldflags.
package cmd

import "fmt"

// Build-time variables set via ldflags:
//
//	-X github.com/thoreinstein/claudekit/cmd.Version=v1.2.3
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// Info returns the multi-line version banner.
func Info() string {
	return fmt.Sprintf("claudekit version %s\n  commit: %s\n  built:  %s\n", Version, Commit, Date)
}
