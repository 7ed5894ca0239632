package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a domain failure.
type Kind int

const (
	// KindUnexpected is any failure the domain did not classify.
	KindUnexpected Kind = iota
	// KindNotFound is returned when a teacher (or any teacher matching a filter) is absent.
	KindNotFound
	// KindDuplicateEmail is returned when an email is already held by another teacher.
	KindDuplicateEmail
	// KindInvalidDate is returned when a birth date or tenure is inconsistent.
	KindInvalidDate
	// KindInvalidArgument is returned for malformed parameters such as a negative threshold.
	KindInvalidArgument
	// KindValidationFailed is returned when payload fields break their constraints.
	KindValidationFailed
	// KindMalformed is returned when the request body cannot be decoded.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindDuplicateEmail:
		return "DUPLICATE_EMAIL"
	case KindInvalidDate:
		return "INVALID_DATE"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindValidationFailed:
		return "VALIDATION_FAILED"
	case KindMalformed:
		return "MALFORMED_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is the single error type raised by the domain. Field and Value are
// set for KindInvalidDate, Fields for KindValidationFailed.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Value   interface{}
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

// Kind sentinels for errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrDuplicateEmail   = &Error{Kind: KindDuplicateEmail}
	ErrInvalidDate      = &Error{Kind: KindInvalidDate}
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrValidationFailed = &Error{Kind: KindValidationFailed}
	ErrMalformed        = &Error{Kind: KindMalformed}
)

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// DuplicateEmail builds a KindDuplicateEmail error.
func DuplicateEmail(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicateEmail, Message: fmt.Sprintf(format, args...)}
}

// InvalidDate builds a KindInvalidDate error for the offending field and value.
func InvalidDate(field string, value interface{}, message string) *Error {
	return &Error{Kind: KindInvalidDate, Message: message, Field: field, Value: value}
}

// InvalidArgument builds a KindInvalidArgument error.
func InvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// ValidationFailed builds a KindValidationFailed error carrying field -> message.
func ValidationFailed(fields map[string]string) *Error {
	return &Error{Kind: KindValidationFailed, Message: "the provided data is not valid", Fields: fields}
}

// Malformed builds a KindMalformed error wrapping the decode failure.
func Malformed(message string, value interface{}, err error) *Error {
	return &Error{Kind: KindMalformed, Message: message, Value: value, Err: err}
}

// KindOf returns the kind of err, KindUnexpected when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Timestamp        time.Time         `json:"timestamp"`
	Status           int               `json:"status"`
	Error            string            `json:"error"`
	Code             string            `json:"code"`
	Message          string            `json:"message"`
	Path             string            `json:"path"`
	Field            string            `json:"field,omitempty"`
	InvalidValue     interface{}       `json:"invalid_value,omitempty"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Category   string
	Message    string
	Code       string
	Field      string
	Value      interface{}
	Fields     map[string]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, category, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Category:   category,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse for the given request path.
func (e *HTTPError) ToErrorResponse(path string, now time.Time) ErrorResponse {
	return ErrorResponse{
		Timestamp:        now,
		Status:           e.StatusCode,
		Error:            e.Category,
		Code:             e.Code,
		Message:          e.Message,
		Path:             path,
		Field:            e.Field,
		InvalidValue:     e.Value,
		ValidationErrors: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", KindUnexpected.String())
	}

	var httpErr *HTTPError
	switch e.Kind {
	case KindNotFound:
		httpErr = NewHTTPError(http.StatusNotFound, "Resource not found", e.Message, e.Kind.String())
	case KindDuplicateEmail:
		httpErr = NewHTTPError(http.StatusConflict, "Data conflict", e.Message, e.Kind.String())
	case KindInvalidDate:
		httpErr = NewHTTPError(http.StatusBadRequest, "Invalid date", e.Message, e.Kind.String())
		httpErr.Field = e.Field
		httpErr.Value = e.Value
	case KindInvalidArgument:
		httpErr = NewHTTPError(http.StatusBadRequest, "Invalid argument", e.Message, e.Kind.String())
	case KindValidationFailed:
		httpErr = NewHTTPError(http.StatusBadRequest, "Validation error", e.Message, e.Kind.String())
		httpErr.Fields = e.Fields
	case KindMalformed:
		httpErr = NewHTTPError(http.StatusBadRequest, "Malformed request", e.Message, e.Kind.String())
		httpErr.Value = e.Value
	default:
		httpErr = NewHTTPError(http.StatusInternalServerError, "Internal server error", "an unexpected error occurred", KindUnexpected.String())
	}
	return httpErr
}
