// Package apperror provides the errors a caller can act on. The HTTP layer
// renders them as {"error": {"code", "message", "details"}}; anything else
// becomes a masked 500.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes. The comment above each group is its HTTP status.
const (
	// 500
	CodeInternal = "INTERNAL_ERROR"

	// 400
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidDateRange = "INVALID_DATE_RANGE"
	CodeInvalidLineID    = "INVALID_LINE_ID"

	// 401
	CodeUnauthorized = "UNAUTHORIZED"

	// 403: approval rights
	CodeForbidden          = "FORBIDDEN"
	CodeNotAnApprover      = "NOT_AN_APPROVER"
	CodeOwnDocument        = "OWN_DOCUMENT"
	CodeOwnExpense         = "OWN_EXPENSE"
	CodeDepartmentMismatch = "DEPARTMENT_MISMATCH"

	// 404
	CodeNotFound = "NOT_FOUND"

	// 409
	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"

	// 422: workflow and backdating rules
	CodeInvalidTransition = "INVALID_STATE_TRANSITION"
	CodeBackdateInFuture  = "BACKDATE_IN_FUTURE"
)

// AppError is the standard error type of the service.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	HTTPStatus int `json:"-"`

	// Err is logged by the HTTP layer and never rendered.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidation(message string) *AppError {
	return newError(http.StatusBadRequest, CodeValidation, message)
}

// NewInvalidInput is a 400 with a specific code, e.g. CodeInvalidLineID.
func NewInvalidInput(code, message string) *AppError {
	return newError(http.StatusBadRequest, code, message)
}

func NewNotFound(entity string, id any) *AppError {
	return newError(http.StatusNotFound, CodeNotFound, entity+" not found").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule is a 422 for a rule the request broke.
func NewBusinessRule(code, message string) *AppError {
	return newError(http.StatusUnprocessableEntity, code, message)
}

// NewInvalidTransition reports a document action not allowed in its current state.
func NewInvalidTransition(entity, from, action string) *AppError {
	return newError(http.StatusUnprocessableEntity, CodeInvalidTransition,
		fmt.Sprintf("cannot %s %s in state %q", action, entity, from)).
		WithDetail("entity", entity).
		WithDetail("state", from).
		WithDetail("action", action)
}

// NewInternal hides err behind a generic message.
func NewInternal(err error) *AppError {
	return newError(http.StatusInternalServerError, CodeInternal, "Internal server error").WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return NewDenied(CodeForbidden, message)
}

// NewDenied is a 403 naming which approval rule refused the caller.
func NewDenied(code, message string) *AppError {
	return newError(http.StatusForbidden, code, message)
}

func NewConflict(message string) *AppError {
	return newError(http.StatusConflict, CodeConflict, message)
}

// NewDuplicate reports a unique key already taken, e.g. an approver added twice.
func NewDuplicate(entity, field, value string) *AppError {
	return newError(http.StatusConflict, CodeDuplicate,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// AsAppError extracts AppError from error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
