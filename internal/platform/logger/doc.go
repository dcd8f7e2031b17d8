// Package logger provides structured logging functionality for the application.
//
// It builds log/slog loggers in JSON or text format with a configurable level,
// and carries request-scoped loggers through a context.Context so handlers and
// services log with the trace ID of the request they serve.
package logger
