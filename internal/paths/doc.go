// Package paths resolves the directories claudekit reads and writes.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg so the claudekit config file and the
// default bundle checkout follow platform conventions (~/.config and
// ~/.local/share on Linux).
//
// # Assistant Directories
//
//	| Scope       | Root                                        |
//	|-------------|---------------------------------------------|
//	| global      | ~/.claude/                                  |
//	| project     | <project>/ (files under .claude/ and root)  |
//	| enterprise  | /etc/claude-code/ (Linux)                   |
//	|             | /Library/Application Support/ClaudeCode/    |
//	|             | C:\Program Files\ClaudeCode\ (Windows)      |
//
// Paths that begin with "~" are expanded with [ExpandHome].
package paths
