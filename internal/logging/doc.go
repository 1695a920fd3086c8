// Package logging provides structured logging for the claudekit CLI using slog.
//
// Text output goes through [Handler], a colorized TTY-aware handler that
// masks sensitive attribute values. JSON output uses slog's JSON handler.
// [NewFileWriter] adds a size-rotated log file, and [MultiHandler] fans a
// record out to several handlers.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("installing", "scope", "global")
//
// # Context
//
// Commands store the configured logger in their context with [NewContext];
// library code retrieves it with [FromContext].
//
// # Testing
//
// [ForTest] routes log output through t.Log.
package logging
