package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes exposed on the wire. Clients match on these, so they
// never change even when messages do.
const (
	CodeInvalidUser     = "json_invalid_user"
	CodeCannotList      = "json_user_cannot_list"
	CodeCannotCreate    = "json_cannot_create"
	CodeUserExists      = "json_user_exists"
	CodeCannotView      = "json_user_cannot_view"
	CodeCannotEdit      = "json_user_cannot_edit"
	CodeCannotDeleteFor = "json_user_cannot_delete"
	CodeInvalidReassign = "json_user_invalid_reassign"
	CodeCannotDelete    = "json_cannot_delete"
	CodeUnknownContext  = "json_error_unknown_context"
	CodeMissingParam    = "json_missing_callback_param"
	CodeInvalidURL      = "json_invalid_url"
	CodeInvalidRole     = "json_invalid_role"
	CodeInternal        = "json_internal_error"
)

// Error is the uniform API error: code + message + HTTP status.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.Code, e.Message, e.Status)
}

// New creates an Error with an explicit status.
func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// BadRequest creates a 400 validation error.
func BadRequest(code, message string) *Error {
	return New(code, message, http.StatusBadRequest)
}

// Forbidden creates a 403 authorization error.
func Forbidden(code, message string) *Error {
	return New(code, message, http.StatusForbidden)
}

// NotFound creates a 404 error.
func NotFound(code, message string) *Error {
	return New(code, message, http.StatusNotFound)
}

// Internal creates a 500 error for operations the backend accepted but
// could not complete.
func Internal(code, message string) *Error {
	return New(code, message, http.StatusInternalServerError)
}

// FromError returns err as an *Error, wrapping unknown errors as a 500
// internal error so handlers always have a renderable envelope.
func FromError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(CodeInternal, "Internal server error.")
}
