// Package logging provides structured logging for the sensor agent.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the agent.
//
// # Features
//
//   - JSON output for log shippers, text output for a serial console
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Security
//
// Never log the bearer token. Log whether one is configured instead.
package logging
