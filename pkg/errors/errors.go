package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a failure originated.
type Kind string

const (
	// KindTransport covers connection, DNS and context failures before a response arrived.
	KindTransport Kind = "transport"
	// KindHTTP is a response outside the 2xx range.
	KindHTTP Kind = "http"
	// KindDecode is a 2xx response whose body is not valid JSON.
	KindDecode Kind = "decode"
	// KindShape is a 2xx JSON body that does not match the expected structure.
	KindShape Kind = "shape"
	// KindInternal is anything raised locally (gateway handlers, exports).
	KindInternal Kind = "internal"
)

// Error represents a typed error with HTTP awareness.
type Error struct {
	Kind    Kind   `json:"kind,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Kind: KindInternal, Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Kind: KindInternal, Code: code, Status: status, Message: message, Err: err}
}

// Transport wraps a failure that happened before any response was received.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Code: "TRANSPORT_ERROR", Status: http.StatusBadGateway, Message: "request failed", Err: err}
}

// HTTPStatus builds the normalized error for a non-success response.
func HTTPStatus(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &Error{Kind: KindHTTP, Code: codeForStatus(status), Status: status, Message: message}
}

// Decode wraps a JSON parse failure of a success body.
func Decode(err error) *Error {
	return &Error{Kind: KindDecode, Code: "DECODE_ERROR", Status: http.StatusBadGateway, Message: "malformed response body", Err: err}
}

// Shape wraps a structural validation failure of a decoded success body.
func Shape(err error) *Error {
	return &Error{Kind: KindShape, Code: "INVALID_RESPONSE_SHAPE", Status: http.StatusBadGateway, Message: "invalid response shape", Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrNoSession    = New("NO_SESSION", http.StatusUnauthorized, "not logged in")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// KindOf reports the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status carried by err, 0 when there is none.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidation.Code
	case http.StatusUnauthorized:
		return ErrUnauthorized.Code
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return ErrNotFound.Code
	case http.StatusConflict:
		return "CONFLICT"
	}
	if status >= http.StatusInternalServerError {
		return "UPSTREAM_ERROR"
	}
	return "HTTP_ERROR"
}
