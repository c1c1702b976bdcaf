// Package logging provides structured logging for ubxcfg.
//
// This package wraps zap logger with convenience functions for the logging
// patterns used throughout the tool. Logging is silent by default so that
// command output stays clean; set the UBXCFG_LOG_LEVEL environment variable
// to enable it.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (raw frame hex dumps, per-key traces)
//   - Info: Normal operations (polls issued, groups completed, acks received)
//   - Warn: Non-fatal issues (discarded frames, empty groups, retransmits)
//   - Error: Fatal issues (transport failures, aborted loads)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Group complete",
//	    zap.String("group", "CFG-MSGOUT"),
//	    zap.Int("keys", 112),
//	)
//
// # Frame Logging
//
// Raw wire traffic can be traced at debug level:
//
//	logging.LogRawBytes("rx frame", frame)
//
// which emits length, hex and printable-ASCII renderings of the bytes.
package logging
