package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline stage errors
const (
	// ErrCodeStreamNotFound indicates no audio stream matched the requested selector.
	ErrCodeStreamNotFound ErrorCode = "STREAM_NOT_FOUND"
	// ErrCodeDownloadFailed indicates the video could not be resolved or downloaded.
	ErrCodeDownloadFailed ErrorCode = "DOWNLOAD_FAILED"
	// ErrCodeModelNotFound indicates the requested model does not exist.
	ErrCodeModelNotFound ErrorCode = "MODEL_NOT_FOUND"
	// ErrCodeTranscriptionFailed indicates the speech-to-text stage failed.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeInferenceFailed indicates the generation stage failed.
	ErrCodeInferenceFailed ErrorCode = "INFERENCE_FAILED"
	// ErrCodeEmptyResult indicates the pipeline produced no output.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"
)

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable:  true,
	ErrCodeConnectionFailed:    true,
	ErrCodeTimeout:             true,
	ErrCodeDownloadFailed:      true,
	ErrCodeTranscriptionFailed: true,
	ErrCodeInferenceFailed:     true,
	ErrCodeEmptyResult:         true,
	ErrCodeExternalService:     true,
	ErrCodeInternal:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
