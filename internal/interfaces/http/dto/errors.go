package dto

import (
	"net/http"

	"github.com/dibaisales/central/internal/domain/dataset"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors. No detail is leaked.
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeNotFound is used for unknown routes
	ErrCodeNotFound = "NOT_FOUND"
)

// Request error codes
const (
	// ErrCodeValidation is used when a form field, file part or JSON field is missing or invalid
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	// ErrCodeRateLimited is used when the client exceeded its request rate
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeNotFound: http.StatusNotFound,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	// Structural spreadsheet errors -> 400 Bad Request
	dataset.ErrCodeUnsupportedFormat: http.StatusBadRequest,
	dataset.ErrCodeUnreadableInput:   http.StatusBadRequest,
	dataset.ErrCodeMissingColumn:     http.StatusBadRequest,
	dataset.ErrCodeEmptyInput:        http.StatusBadRequest,
	dataset.ErrCodeNoOutput:          http.StatusBadRequest,
	dataset.ErrCodeTooManyRows:       http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the ERR_* spelling some clients still send in
// tests and tooling to the current codes
var LegacyErrorCodeMapping = map[string]string{
	"ERR_INTERNAL":     ErrCodeInternal,
	"ERR_NOT_FOUND":    ErrCodeNotFound,
	"ERR_VALIDATION":   ErrCodeValidation,
	"ERR_BAD_REQUEST":  ErrCodeBadRequest,
	"ERR_INVALID_JSON": ErrCodeInvalidJSON,
	"ERR_RATE_LIMITED": ErrCodeRateLimited,
}

// NormalizeErrorCode converts a legacy error code to the current format
// If the code is already current or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// NewStructuralErrorResponse converts a structural spreadsheet error into a
// response, carrying the missing and found columns when present
func NewStructuralErrorResponse(err *dataset.StructuralError, requestID string) Response {
	resp := NewErrorResponseWithRequestID(err.Code, err.Message, requestID)
	resp.Error.Missing = err.Missing
	resp.Error.Found = err.Found
	return resp
}
