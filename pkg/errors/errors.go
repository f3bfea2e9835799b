package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeTimeout           = "TIMEOUT"
	CodeTooManyRequests   = "TOO_MANY_REQUESTS"
	CodeInvalidEventLen   = "INVALID_EVENT_LENGTH"
	CodeNoAvailableUsers  = "NO_AVAILABLE_USERS"
	CodeLimitExceeded     = "LIMIT_EXCEEDED"
	CodeUpstreamFetchFail = "UPSTREAM_FETCH_FAILED"
)

// AppError is the client-facing form of every failure: a machine-readable code,
// a message and the HTTP status the handler answers with.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func PayloadTooLarge(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusRequestEntityTooLarge)
}

func UnsupportedMediaType(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusUnsupportedMediaType)
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:       CodeTooManyRequests,
		Message:    message,
		HTTPStatus: http.StatusTooManyRequests,
	}
}

func InvalidEventLength(message string, err error) *AppError {
	return Wrap(err, CodeInvalidEventLen, message, http.StatusBadRequest)
}

// NoAvailableUsers, LimitExceeded and Conflict all answer 409: the request was
// well formed but the calendar cannot take it.
func NoAvailableUsers(message string, err error) *AppError {
	return Wrap(err, CodeNoAvailableUsers, message, http.StatusConflict)
}

func LimitExceeded(message string, err error) *AppError {
	return Wrap(err, CodeLimitExceeded, message, http.StatusConflict)
}

func Conflict(message string, err error) *AppError {
	return Wrap(err, CodeConflict, message, http.StatusConflict)
}

func UpstreamFailure(message string, err error) *AppError {
	return Wrap(err, CodeUpstreamFetchFail, message, http.StatusBadGateway)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError walks the error chain for an *AppError. Anything else becomes an
// internal error that keeps the original cause.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
