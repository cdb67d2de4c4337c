// Package logger provides structured logging for tweetetl.
//
// It wraps zerolog behind a small Logger interface. Output format is chosen
// from the logging config: "console" renders colored human-readable lines,
// "json" emits one JSON object per line, and "auto" picks console only when
// stdout is a terminal. Errors that carry a github.com/pkg/errors stack have
// the stack rendered under the "stack" key.
//
// Basic usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("handle", "wtfruchss")
//	log.Info("Run started")
//	log.WithError(err).Error("Upload failed")
//
// Tests can use NewTestLogger to capture messages or NewNopLogger to
// discard them.
package logger
