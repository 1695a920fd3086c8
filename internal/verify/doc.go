// Package verify runs post-install checks against the system side of a
// bundle layout.
//
// A [Runner] executes [Check]s and aggregates their [CheckResult]s into a
// [Report]. Each check returns a single result whose status is the worst
// severity it found. A report with no error results means the installation
// is usable.
//
// # Checks
//
//   - [FileCheck]: required files per scope exist.
//   - [SyntaxCheck]: installed JSON, YAML and TOML files parse.
//   - [CountCheck]: counts rules, skills, commands and agents.
//   - [ImportCheck]: @path imports in CLAUDE.md files resolve.
//   - [SettingsCheck]: summarizes hook events and flags plaintext secrets.
//   - [PermissionCheck]: flags world-writable files and directories, and
//     implements [Fixer].
package verify
