// Package apperr defines the application error taxonomy shared by the
// service and HTTP layers.
//
// An *Error carries a user-facing message and the HTTP status it maps to.
// Errors are plain values: they are returned up the call chain untouched and
// rendered exactly once by the terminal error handler in the HTTP layer.
//
// Each *Error records the call stack at construction (via github.com/pkg/errors)
// so non-production responses can include it for diagnostics.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Default messages used when a constructor is called without one.
const (
	MsgBadRequest = "Bad Request"
	MsgNotFound   = "Not Found"
	MsgInternal   = "Internal Server Error"
)

// Error is an application failure with a user-facing message and HTTP status.
type Error struct {
	Message string
	Status  int

	origin error // holds the construction stack
}

// New returns an *Error with the given message and status. A zero status
// means 500.
func New(msg string, status int) *Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return &Error{Message: msg, Status: status, origin: errors.New(msg)}
}

// BadRequest returns a 400 error. The first msg, if any, replaces the
// default "Bad Request".
func BadRequest(msg ...string) *Error {
	return New(pick(msg, MsgBadRequest), http.StatusBadRequest)
}

// NotFound returns a 404 error. The first msg, if any, replaces the default
// "Not Found".
func NotFound(msg ...string) *Error {
	return New(pick(msg, MsgNotFound), http.StatusNotFound)
}

// Internal returns a 500 error.
func Internal(msg ...string) *Error {
	return New(pick(msg, MsgInternal), http.StatusInternalServerError)
}

func (e *Error) Error() string { return e.Message }

// StackTrace exposes the construction stack in the github.com/pkg/errors
// format.
func (e *Error) StackTrace() errors.StackTrace {
	if st, ok := e.origin.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// From reports whether err (or anything it wraps) is an *Error.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 500 for anything that
// is not an *Error.
func StatusOf(err error) int {
	if ae, ok := From(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// StackOf renders the first stack recorded along err's chain, or ""
// when none was recorded.
func StackOf(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return ""
	}
	frames := st.StackTrace()
	if len(frames) == 0 {
		return ""
	}
	return fmt.Sprintf("%s%+v", err.Error(), frames)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func pick(msg []string, def string) string {
	if len(msg) > 0 && msg[0] != "" {
		return msg[0]
	}
	return def
}
