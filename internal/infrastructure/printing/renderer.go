package printing

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/lotiva/backend/internal/domain/contract"
	"github.com/lotiva/backend/internal/domain/shared"
)

// PDFMagic is the header every PDF document starts with
var PDFMagic = []byte("%PDF")

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	// HTML content to render
	HTML string
	// Page layout (paper size, orientation, margins)
	Page contract.PageOptions
	// Title for the PDF document metadata (used when HTML is a fragment)
	Title string
	// Timeout overrides the default rendering timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// PageCount is the number of pages in the PDF
	PageCount int
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	// Render converts HTML content to a PDF document
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Is maps rendering errors onto the shared domain errors, so callers can test
// errors.Is(err, shared.ErrRenderTimeout) without knowing this package.
func (e *RenderError) Is(target error) bool {
	switch target {
	case shared.ErrRenderTimeout:
		return e.Code == ErrCodeRenderTimeout
	case shared.ErrRenderFailed:
		return e.Code != ErrCodeRenderTimeout && e.Code != ErrCodeStorageFailed
	}
	return false
}

// Retryable reports whether rendering the same request again may succeed
func (e *RenderError) Retryable() bool {
	switch e.Code {
	case ErrCodeInvalidHTML, ErrCodeInvalidPaperSize:
		return false
	default:
		return true
	}
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
	ErrCodeInvalidPDF       = "INVALID_PDF"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsRetryable reports whether err is worth another rendering attempt.
// Context cancellation by the caller is never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var renderErr *RenderError
	if errors.As(err, &renderErr) {
		return renderErr.Retryable()
	}
	return true
}

// HasPDFMagic reports whether data starts with the PDF header
func HasPDFMagic(data []byte) bool {
	return bytes.HasPrefix(data, PDFMagic)
}

// estimatePageCount counts page objects in the PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Page" also matches the parent "/Type /Pages" objects
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
