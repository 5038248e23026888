// Package logger builds the service's structured logger on top of log/slog:
// human-readable text outside production, JSON lines in production.
package logger
