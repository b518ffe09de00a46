package errors

import (
	"errors"
	"net/http"
)

// Kind classifies an application error. Every Kind maps to exactly one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error type returned by services, policies and handlers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind and code, so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

// Wrap returns a copy of base that carries cause.
func Wrap(base *Error, cause error) *Error {
	wrapped := *base
	wrapped.Err = cause
	return &wrapped
}

// New creates an application error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// ErrUserNotFound is returned when no user row matches.
	ErrUserNotFound = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = New(KindConflict, "USER_ALREADY_EXISTS", "user with this email already exists")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = New(KindUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	// ErrInvalidToken is returned when a token fails signature, algorithm or expiry checks.
	ErrInvalidToken = New(KindUnauthorized, "INVALID_TOKEN", "invalid or expired token")
	// ErrMissingToken is returned when a protected route is called without a token.
	ErrMissingToken = New(KindUnauthorized, "MISSING_TOKEN", "access token is required")
)

// Validation builds a validation error carrying field-level details.
func Validation(details ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: "validation failed", Details: details}
}

// Forbidden builds an authorization error with a caller-facing message.
func Forbidden(message string) *Error {
	return New(KindForbidden, "FORBIDDEN", message)
}

// RateLimited builds a quota error with a caller-facing message.
func RateLimited(message string) *Error {
	return New(KindRateLimited, "RATE_LIMITED", message)
}

// Internal wraps an unexpected failure. The cause is never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL_ERROR", Message: "internal server error", Err: err}
}

// KindOf reports the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// StatusCode returns the HTTP status for a Kind.
func StatusCode(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// MapErrorToHTTP maps application errors to HTTP errors. Internal and foreign
// errors collapse to a generic 500 body.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *Error
	if !errors.As(err, &appErr) || appErr.Kind == KindInternal {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
	httpErr := NewHTTPError(StatusCode(appErr.Kind), appErr.Message, appErr.Code)
	httpErr.Details = appErr.Details
	return httpErr
}
