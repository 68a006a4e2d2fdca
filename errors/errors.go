// Package errors provides unified error handling for the summarization
// service. It implements structured error types with error codes, HTTP status
// mapping, and retryable detection following RFC 7807.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Domain error constructors ---

// StreamNotFound creates an AppError for a video with no matching audio stream.
func StreamNotFound(url, selector string) *AppError {
	return &AppError{
		Code: ErrCodeStreamNotFound, Message: fmt.Sprintf("No audio stream matching %q is available for this video.", selector),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"url": url, "selector": selector},
	}
}

// DownloadFailed creates an AppError for an unresolvable or unreachable video.
func DownloadFailed(url string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDownloadFailed, Message: "The video could not be downloaded. Check the URL and try again.",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"url": url}, Cause: cause,
	}
}

// ModelNotFound creates an AppError for a missing model.
func ModelNotFound(model string) *AppError {
	return &AppError{
		Code: ErrCodeModelNotFound, Message: fmt.Sprintf("Model %q was not found.", model),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"model": model},
	}
}

// TranscriptionFailed creates an AppError for a failed transcription stage.
func TranscriptionFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: "Audio transcription failed.",
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// InferenceFailed creates an AppError for a failed generation call.
func InferenceFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInferenceFailed, Message: "Summary generation failed.",
		HTTPStatus: http.StatusBadGateway, Retryable: true, Cause: cause,
	}
}

// EmptyResult creates an AppError for a pipeline run that produced no output.
func EmptyResult() *AppError {
	return &AppError{
		Code: ErrCodeEmptyResult, Message: "The pipeline produced no results.",
		HTTPStatus: http.StatusBadGateway, Retryable: true,
	}
}

// --- Generic error constructors ---

// ServiceUnavailable creates an AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed creates an AppError for a failed connection to a service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s. Please verify the service is running.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates an AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NotFound creates an AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates an AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// MissingField creates an AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates an AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ExternalServiceError creates an AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}
