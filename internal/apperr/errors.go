// Package apperr defines the error kinds the API reports to clients and the
// HTTP status each kind maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindOptimisticLock
)

// Default messages
const (
	MsgUnauthorized   = "Authentication is required to access this resource"
	MsgForbidden      = "Access denied"
	MsgOptimisticLock = "Resource has been modified by another user"
	MsgInternal       = "An unexpected error occurred"
)

var kindInfo = map[Kind]struct {
	status int
	code   string
}{
	KindInternal:       {http.StatusInternalServerError, "InternalServerError"},
	KindInvalidRequest: {http.StatusBadRequest, "InvalidRequest"},
	KindValidation:     {http.StatusBadRequest, "Validation Error"},
	KindUnauthorized:   {http.StatusUnauthorized, "Unauthorized"},
	KindForbidden:      {http.StatusForbidden, "Forbidden"},
	KindNotFound:       {http.StatusNotFound, "ResourceNotFound"},
	KindConflict:       {http.StatusConflict, "ResourceConflict"},
	KindOptimisticLock: {http.StatusConflict, "OptimisticLock"},
}

// Status returns the HTTP status for the kind
func (k Kind) Status() int {
	return kindInfo[k].status
}

// Code returns the value reported in the "error" field
func (k Kind) Code() string {
	return kindInfo[k].code
}

// Violation describes a single failed constraint
type Violation struct {
	Field        string  `json:"field"`
	Message      string  `json:"message"`
	InvalidValue *string `json:"invalidValue"`
}

// Error is an error with API semantics
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindValidation && e.Message == "" {
		return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code
func (e *Error) Status() int {
	return e.Kind.Status()
}

// InvalidRequest creates a 400 error
func InvalidRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a 404 error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a 409 error
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// OptimisticLock reports a concurrent modification
func OptimisticLock() *Error {
	return &Error{Kind: KindOptimisticLock, Message: MsgOptimisticLock}
}

// Forbidden creates a 403 error
func Forbidden(message string) *Error {
	if message == "" {
		message = MsgForbidden
	}
	return &Error{Kind: KindForbidden, Message: message}
}

// Unauthorized creates a 401 error wrapping the underlying cause
func Unauthorized(cause error) *Error {
	return &Error{Kind: KindUnauthorized, Message: MsgUnauthorized, Err: cause}
}

// Validation creates a 400 error listing every violation
func Validation(violations []Violation) *Error {
	return &Error{Kind: KindValidation, Violations: violations}
}

// Internal wraps an unexpected error
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// ValueOf is a helper for Violation.InvalidValue
func ValueOf(s string) *string {
	return &s
}
