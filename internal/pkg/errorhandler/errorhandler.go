package errorhandler

import (
	"context"
	"net/http"

	"github.com/sawgrasskings/booking-api/internal/pkg/logger"
	"github.com/sawgrasskings/booking-api/internal/pkg/response"
)

// HandleError logs err on the request logger and sends the error envelope.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	l := logger.FromContext(ctx)
	event := l.Error()
	if status < http.StatusInternalServerError {
		event = l.Warn()
	}
	event = event.
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(message)

	response.Error(w, status, code, message)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	logger.FromContext(ctx).Warn().
		Interface("validation_errors", fieldErrors).
		Msg("Validation error")
}

// LogExternalServiceError logs errors from remote mirror calls
func LogExternalServiceError(ctx context.Context, service, operation string, err error) {
	logger.FromContext(ctx).Warn().
		Str("external_service", service).
		Str("operation", operation).
		Err(err).
		Msg("External service error")
}
