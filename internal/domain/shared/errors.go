package shared

import "errors"

// Error codes shared by every bounded context
const (
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeRenderFailed    = "RENDER_FAILED"
	CodeRenderTimeout   = "RENDER_TIMEOUT"
	CodeDeliveryFailed  = "DELIVERY_FAILED"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeEmailInProgress = "EMAIL_IN_PROGRESS"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Kind groups specific codes (SALE_NOT_FOUND) under a general one (NOT_FOUND)
	Kind  string `json:"-"`
	Cause error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code or kind.
// This keeps errors.Is(err, ErrNotFound) working for SALE_NOT_FOUND and friends.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Kind != "" && t.Code == e.Kind
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    code,
	}
}

// NewKindError creates a domain error with a specific code that also matches its kind
func NewKindError(kind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// WithCause returns a copy of the error carrying the given cause
func (e *DomainError) WithCause(cause error) *DomainError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// Common domain errors
var (
	ErrNotFound       = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict       = NewDomainError(CodeConflict, "Resource already exists")
	ErrValidation     = NewDomainError(CodeValidation, "Validation failed")
	ErrInvalidInput   = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrRenderFailed   = NewDomainError(CodeRenderFailed, "Document rendering failed")
	ErrRenderTimeout  = NewDomainError(CodeRenderTimeout, "Document rendering timed out")
	ErrDeliveryFailed = NewDomainError(CodeDeliveryFailed, "Email delivery failed")
)

// NewValidationError creates a ValidationFailure with a specific message
func NewValidationError(message string) *DomainError {
	return NewKindError(CodeValidation, CodeValidation, message)
}
