// Package ui provides terminal UI components for the ubxcfg CLI.
//
// This package uses Bubbles and Lipgloss to render polished terminal output
// for the save and load commands. The components follow a "run once and exit"
// pattern: they render output compellingly but don't require user
// interaction.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Tracker: Single-line progress bar driven by engine callbacks
//   - Result boxes: Success/failure summaries with styled key/value rows
//
// The Tracker redraws its line in place on interactive terminals and falls
// back to line-per-update output when stdout is piped, so logs stay
// readable either way.
//
// # Logging Integration
//
// This package expects logging to be controlled via the UBXCFG_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set UBXCFG_LOG_LEVEL to
// "debug", "info", "warn", or "error" to see frame-level diagnostics on
// stderr alongside the UI.
package ui
