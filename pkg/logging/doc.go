// Package logging provides structured logging configuration for mockxhr.
//
// This package wraps log/slog to provide consistent logging across all
// mockxhr components. It supports configurable log levels and output
// formats.
//
// # Usage
//
// Components stay silent by default. To see what a mock server is doing,
// pass a logger when constructing it:
//
//	logger := logging.New(logging.DefaultConfig())
//	srv := server.New(server.WithLogger(logger))
//
//	logger.Debug("route matched", "method", "GET", "url", "/api/users")
//
// # Log Levels
//
// Four log levels are supported:
//   - Debug: lifecycle tracing (opens, sends, matches, fired timeouts)
//   - Info: general operational information
//   - Warn: suspicious mock setups (unmatched requests, failed validation)
//   - Error: error conditions that need attention
//
// # Output Formats
//
//   - Text: Human-readable format for development
//   - JSON: Structured format for log aggregation systems
//
// # Integration
//
// Components accept a *slog.Logger in their constructor or via an option.
// If no logger is provided, they use logging.Nop().
package logging
