package logger

// Common structured log field names used across the service.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldURL       = "url"
	FieldPath      = "path"
	FieldModel     = "model"
	FieldDuration  = "duration"
	FieldProvider  = "provider"
)
