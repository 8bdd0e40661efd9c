// Package logging provides structured logging for wok commands.
//
// The package wraps log/slog. When a log file is configured, records are
// written as JSON through a size-based [RotatingWriter]; otherwise they are
// written as text to stderr so an operator sees them next to command output.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(logging.Options{Level: "info"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("pushed branch", "branch", "feature-x")
//
// # Context Propagation
//
// Child loggers carry persistent attributes:
//
//	opLogger := logger.WithOperation("join")
//	opLogger.WithRepo("prj-1").Debug("created branch", "branch", "feature-x")
//
// Output (JSON mode):
//
//	{"time":"...","level":"DEBUG","msg":"created branch","operation":"join","repo":"prj-1","branch":"feature-x"}
//
// # Log Rotation
//
// File output rotates once the file exceeds MaxSizeMB. Rotated files are
// named wok.log.1 (newest) through wok.log.N (oldest).
//
// # Testing
//
// Use [NopLogger] to discard all output.
package logging
