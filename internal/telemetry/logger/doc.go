// Package logger provides structured logging for rmcloud.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler setup and level control
//   - context.go: Logger and request ID propagation through context.Context
//   - redact.go: Masking of tokens and other credentials
//
// Every outbound request made by pkg/rmcloud is tagged with a request ID,
// and bearer tokens never reach the output in clear text.
package logger
