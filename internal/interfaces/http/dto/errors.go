package dto

import (
	"errors"
	"net/http"

	"github.com/lotiva/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidInput is used for request fields failing binding rules
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeValidation is used when sale data cannot produce a valid contract
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeEmailInProgress     = "ERR_EMAIL_IN_PROGRESS"
)

// Upstream error codes
const (
	ErrCodeRenderFailed   = "ERR_RENDER_FAILED"
	ErrCodeRenderTimeout  = "ERR_RENDER_TIMEOUT"
	ErrCodeDeliveryFailed = "ERR_DELIVERY_FAILED"
)

// ErrCodeRequestTooLarge is used when the request body exceeds the configured limit
const ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Sale data that cannot be turned into a contract -> 422
	ErrCodeValidation: http.StatusUnprocessableEntity,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeEmailInProgress:     http.StatusConflict,

	ErrCodeRenderFailed:   http.StatusBadGateway,
	ErrCodeRenderTimeout:  http.StatusGatewayTimeout,
	ErrCodeDeliveryFailed: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to API error codes
var LegacyErrorCodeMapping = map[string]string{
	shared.CodeNotFound:        ErrCodeNotFound,
	shared.CodeConflict:        ErrCodeConflict,
	shared.CodeValidation:      ErrCodeValidation,
	shared.CodeInvalidInput:    ErrCodeInvalidInput,
	shared.CodeRenderFailed:    ErrCodeRenderFailed,
	shared.CodeRenderTimeout:   ErrCodeRenderTimeout,
	shared.CodeDeliveryFailed:  ErrCodeDeliveryFailed,
	shared.CodeInternal:        ErrCodeInternal,
	shared.CodeEmailInProgress: ErrCodeEmailInProgress,
	"STALE_REVISION":           ErrCodeConcurrencyConflict,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes that are already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// ResolveDomainError maps err to its API code, status and client message.
// Specific codes win over their kind, and anything unmapped is an internal error.
func ResolveDomainError(err error) (code string, status int, message string) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return ErrCodeInternal, http.StatusInternalServerError, "An unexpected error occurred"
	}

	for _, candidate := range []string{domainErr.Code, domainErr.Kind} {
		if candidate == "" {
			continue
		}
		if mapped, ok := LegacyErrorCodeMapping[candidate]; ok {
			return mapped, GetHTTPStatus(mapped), domainErr.Message
		}
	}
	return ErrCodeInternal, http.StatusInternalServerError, "An unexpected error occurred"
}
