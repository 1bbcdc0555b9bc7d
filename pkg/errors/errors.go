// Package errors augments the standard errors
// provided by fmt (https://golang.org/src/fmt/errors.go)
// with sentinel errors that may be wrapped and annotated
// without losing their identity.
//
// Sentinels are declared once with New, then decorated at the call site:
//
//	status.ErrIO.Wrap(err).WithContext("on %s", path)
//
// The decorated error still matches the sentinel with Is.
package errors

import (
	stderr "errors"
	"fmt"
)

var _ error = New("")

// New Error
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error augments the standard error interface with a Wrap method.
//
// The main difference with github.com/pkg/errors is that we are wrapping
// errors from errors, not from text.
type Error struct {
	msg     string
	context string
	err     error
	origin  *Error
}

// Error message
func (e *Error) Error() string {
	msg := e.msg
	if e.context != "" {
		msg += " " + e.context
	}
	if e.err != nil {
		msg += ": " + e.err.Error()
	}
	return msg
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap a nested error.
//
// The receiver is left untouched: a copy carrying the cause is returned,
// so that package-level sentinels may be safely wrapped concurrently.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err
	return c
}

// WithContext returns a copy of the error annotated with some formatted context,
// such as the key or path an operation failed on.
func (e *Error) WithContext(format string, args ...interface{}) *Error {
	c := e.clone()
	if c.context != "" {
		c.context += " "
	}
	c.context += fmt.Sprintf(format, args...)
	return c
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.origin != nil {
		return e.origin
	}
	return e
}

func (e *Error) clone() *Error {
	return &Error{
		msg:     e.msg,
		context: e.context,
		err:     e.err,
		origin:  e.root(),
	}
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
