// Package apperr defines the error taxonomy shared by all services.
// Services return *Error values; the HTTP layer translates the kind
// into a status code exactly once.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	MalformedTime
	InvalidSchedule
	NotFound
	Unauthorized
	Forbidden
	AlreadyFinalized
	InvalidAction
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case MalformedTime:
		return "malformed_time"
	case InvalidSchedule:
		return "invalid_schedule"
	case NotFound:
		return "not_found"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case AlreadyFinalized:
		return "already_finalized"
	case InvalidAction:
		return "invalid_action"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a new taxonomy error.
func E(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or Internal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func statusFor(kind Kind) int {
	switch kind {
	case Validation, MalformedTime, InvalidAction:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case AlreadyFinalized:
		return http.StatusConflict
	case InvalidSchedule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorHandler is installed on the echo instance to map taxonomy
// errors (and plain echo errors) to JSON responses.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"
	label := Internal.String()

	var ae *Error
	var he *echo.HTTPError
	switch {
	case errors.As(err, &ae):
		label = ae.Kind.String()
		status = statusFor(ae.Kind)
		message = ae.Message
	case errors.As(err, &he):
		status = he.Code
		label = http.StatusText(status)
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if status == http.StatusInternalServerError {
		message = "internal server error"
	}

	_ = c.JSON(status, map[string]string{
		"error":   label,
		"message": message,
	})
}
