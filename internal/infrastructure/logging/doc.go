// Package logging provides structured logging for huestream.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - File and line provenance on every entry
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in huestream.yaml, or the
// HUESTREAM_LOG_LEVEL environment variable:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("stream started", "rate_hz", 25)
//	logger.Error("handshake failed", "error", err)
//
// # Security
//
// Never log the pre-shared key, tokens or passwords. Log at most a short
// prefix of the bridge identity:
//
//	logger.Info("connecting", "identity", identity[:8]+"...")
package logging
