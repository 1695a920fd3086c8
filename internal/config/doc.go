// Package config provides configuration management for the claudekit CLI.
//
// # Configuration File
//
// The configuration file is config.yaml, searched for in the current
// directory and then in <XDG config home>/claudekit/ (or the directory named
// by CLAUDEKIT_CONFIG_DIR):
//
//	version: 1
//	bundle_dir: ~/src/claude-config
//	claude_dir: ~/.claude
//	enterprise_dir: /etc/claude-code
//	ignore:
//	  - "**/*.local.md"
//	backup:
//	  enabled: true
//	bootstrap:
//	  user: octocat
//	  repo: claude-config
//	  branch: main
//	  dir: ~/.local/share/claudekit/bundle
//
// Every key can be overridden from the environment with the CLAUDEKIT_
// prefix (CLAUDEKIT_BUNDLE_DIR, CLAUDEKIT_BACKUP_ENABLED, ...). The bootstrap
// keys additionally honor GITHUB_USER, GITHUB_REPO, GITHUB_BRANCH and
// INSTALL_DIR.
//
// # Loading Configuration
//
// Call [Init] once, then [Load]:
//
//	config.Init()
//	cfg, err := config.Load("")
//
// A missing file is not an error when no explicit path is given; defaults
// are returned instead. Loaded configurations are validated with
// [Validate].
package config
