package logging

import "log/slog"

// Common field names for consistent logging across the gateway.
const (
	FieldService   = "service"
	FieldRequestID = "request_id"
	FieldFilename  = "filename"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Filename returns a slog attribute for the submission filename.
func Filename(name string) slog.Attr {
	return slog.String(FieldFilename, name)
}

// Status returns a slog attribute for a pipeline status.
func Status(status string) slog.Attr {
	return slog.String(FieldStatus, status)
}

// Error returns a slog attribute for an error message.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
