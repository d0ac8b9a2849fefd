package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInternal         = errors.New("internal error")
	ErrConflict         = errors.New("conflict")
	ErrGone             = errors.New("gone")
	ErrServiceUnavail   = errors.New("service unavailable")
	ErrBadGateway       = errors.New("bad gateway")
	ErrRemoteValidation = errors.New("remote validation failed")
)

// AppError represents a structured application error with HTTP status mapping.
//
// Two AppErrors are considered the same error by errors.Is when their codes
// match, so a package can declare a template value (for example a
// NO_BRANCH_SELECTED precondition) and still return per-call copies with a
// more specific message.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Status  int               `json:"-"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError carrying the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t == nil {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error with a different message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	cpy := *e
	cpy.Message = fmt.Sprintf(format, args...)
	return &cpy
}

// New creates an AppError with an explicit code and status. base is what
// errors.Is and HTTPStatus see through Unwrap.
func New(code string, status int, message string, base error) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: base}
}

func NotFound(resource, id string) *AppError {
	return New("NOT_FOUND", http.StatusNotFound, fmt.Sprintf("%s with id %s not found", resource, id), ErrNotFound)
}

func InvalidInput(message string) *AppError {
	return New("INVALID_INPUT", http.StatusBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return New("UNAUTHORIZED", http.StatusUnauthorized, message, ErrUnauthorized)
}

func Conflict(message string) *AppError {
	return New("CONFLICT", http.StatusConflict, message, ErrConflict)
}

func Gone(message string) *AppError {
	return New("GONE", http.StatusGone, message, ErrGone)
}

// ServiceUnavailable reports a backend that could not be reached or whose
// breaker is open.
func ServiceUnavailable(message string) *AppError {
	return New("SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, message, ErrServiceUnavail)
}

// BadGateway reports an unexpected answer from a backend. err defaults to
// ErrBadGateway.
func BadGateway(message string, err error) *AppError {
	if err == nil {
		err = ErrBadGateway
	}
	return New("BAD_GATEWAY", http.StatusBadGateway, message, err)
}

// RemoteValidation creates a 422 error carrying the field-level messages a
// downstream service rejected a request with. The message lists every pair as
// "field: message", sorted by field and joined by "; ".
func RemoteValidation(service, summary string, fields map[string]string) *AppError {
	msg := FormatFields(fields)
	if msg == "" {
		msg = summary
	}
	if msg == "" {
		msg = service + " rejected the request"
	}
	e := New("REMOTE_VALIDATION", http.StatusUnprocessableEntity, msg, ErrRemoteValidation)
	e.Fields = fields
	return e
}

// FormatFields renders a field error map as "a: x; b: y".
func FormatFields(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}

// Internal hides err behind a generic 500 message.
func Internal(err error) *AppError {
	return New("INTERNAL_ERROR", http.StatusInternalServerError, "an internal error occurred", err)
}

var sentinelStatus = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrConflict, http.StatusConflict},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrGone, http.StatusGone},
	{ErrRemoteValidation, http.StatusUnprocessableEntity},
	{ErrServiceUnavail, http.StatusServiceUnavailable},
	{ErrBadGateway, http.StatusBadGateway},
}

// HTTPStatus returns the status of the outermost AppError in err's chain, or
// the status of the first sentinel it wraps, or 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
