// Package logger builds the process-wide slog logger: JSON lines in
// production, text elsewhere, tagged with service and environment.
package logger
