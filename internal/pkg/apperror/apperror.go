package apperror

import "net/http"

// Kind is a stable, machine-readable label for a class of failure.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnavailable  Kind = "unavailable"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
	KindRateLimited  Kind = "rate_limited"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Stable error class reported to clients
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
// The Kind is derived from the status code.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
	}
}

// NewKind creates an AppError with an explicit kind.
func NewKind(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
		Err:     err,
	}
}

// Validation is shorthand for a 400 validation failure.
func Validation(message string) *AppError {
	return NewKind(http.StatusBadRequest, KindValidation, message)
}

// NotFound is shorthand for a 404.
func NotFound(message string) *AppError {
	return NewKind(http.StatusNotFound, KindNotFound, message)
}

// Conflict is shorthand for a 409 caused by overlapping state.
func Conflict(message string) *AppError {
	return NewKind(http.StatusConflict, KindConflict, message)
}

// Unavailable is shorthand for a 409 caused by a blocked calendar.
func Unavailable(message string) *AppError {
	return NewKind(http.StatusConflict, KindUnavailable, message)
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindInternal
	}
}
