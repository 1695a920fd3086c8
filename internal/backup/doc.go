// Package backup manages timestamped sibling copies made before a file is
// overwritten.
//
// # Naming
//
// A snapshot of settings.json taken at 2026-01-02 15:04:05 local time is
// written next to the original:
//
//	settings.json
//	settings.json.backup_20260102_150405
//
// A second snapshot within the same second gets a numeric suffix
// (settings.json.backup_20260102_150405.1). The part after the marker is the
// snapshot ID.
//
// # Usage
//
//	mgr := backup.NewManager()
//	snap, err := mgr.Snapshot("/home/u/.claude/settings.json")
//	...
//	snaps, err := mgr.List("/home/u/.claude/settings.json") // newest first
//	res, err := mgr.Restore("/home/u/.claude/settings.json", "") // newest
//
// # Retention
//
// Snapshots are never removed automatically. [Manager.Prune] and
// [Manager.PruneTree] delete all but the newest N snapshots on request.
package backup
