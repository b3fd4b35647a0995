// Package errors provides the ierr error-building API used across the
// engine. Errors are built with NewError/WithError, enriched with a
// frontend-facing hint and machine-readable details, and finally Marked
// against one of the sentinel errors below so that callers and the HTTP
// middleware can classify them with errors.Is without inspecting strings.
package errors

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Mark(...) attaches one of these to a built error so
// that errors.Is(err, ErrNotFound) keeps working after the error has been
// wrapped, hinted, and passed up several layers of the call stack.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrVersionConflict  = errors.New("version conflict")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrSystemError      = errors.New("system error")
	ErrDatabase         = errors.New("database error")
)

// ErrorBuilder provides a fluent interface for building errors. It does
// not itself implement the error interface; Mark must be the last call
// in a chain to get back a plain error.
type ErrorBuilder struct {
	err error
}

// NewError starts a new error builder chain from a message.
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.New(msg)}
}

// WithError starts a builder chain from an existing error.
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// WithMessage adds internal context to the error (logged, not shown to users).
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint attaches a user-facing explanation of the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

// WithHintf is WithHint with formatting.
func (b *ErrorBuilder) WithHintf(format string, args ...any) *ErrorBuilder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches structured, safe-to-report detail fields.
func (b *ErrorBuilder) WithReportableDetails(details map[string]any) *ErrorBuilder {
	marshaled, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, "__json__:%s", errors.Safe(string(marshaled)))
	return b
}

// Mark tags the error with a sentinel so errors.Is(err, reference) matches
// downstream, then returns the finished error. Should be the last call.
func (b *ErrorBuilder) Mark(reference error) error {
	b.err = errors.Mark(b.err, reference)
	return b.err
}

// Err returns the built error without marking it against a sentinel.
func (b *ErrorBuilder) Err() error {
	return b.err
}

// As is a re-export of errors.As so callers building on ierr don't need a
// second import of the underlying errors library.
func As(err error, target any) bool { return errors.As(err, target) }

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool    { return errors.Is(err, ErrAlreadyExists) }
func IsVersionConflict(err error) bool  { return errors.Is(err, ErrVersionConflict) }
func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsInvalidOperation(err error) bool { return errors.Is(err, ErrInvalidOperation) }
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// HTTPStatusFromErr maps a marked error to the HTTP status the API layer
// should respond with. Errors not marked against a recognized sentinel
// map to 500.
func HTTPStatusFromErr(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidOperation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the standard JSON error envelope returned by the API.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ErrorDetail carries the user-facing message and any safe structured details.
type ErrorDetail struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DisplayMessage extracts the first non-empty hint attached to err, falling
// back to a generic message if none was set.
func DisplayMessage(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		for _, hint := range hints {
			if hint = strings.TrimSpace(hint); hint != "" {
				return hint
			}
		}
	}
	return "An unexpected error occurred"
}

// SafeDetails collects the reportable detail maps attached via WithReportableDetails.
func SafeDetails(err error) map[string]any {
	details := make(map[string]any)
	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			if len(payload) > 9 && strings.HasPrefix(payload, "__json__:") {
				var jsonDetails map[string]any
				if jerr := json.Unmarshal([]byte(payload[9:]), &jsonDetails); jerr == nil {
					for k, v := range jsonDetails {
						details[k] = v
					}
				}
			}
		}
	}
	return details
}
