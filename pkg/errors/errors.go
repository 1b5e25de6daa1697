// Package errors defines the coded errors shared by the CLI and the HTTP API.
//
// Every failure a user can cause carries a [Code]. The CLI prints the
// message; the API answers with the code's HTTP status and a JSON body
// holding the code and message.
//
//	err := errors.New(errors.ErrCodeInvalidElement, "invalid element name: %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidElement) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeMalformedTree, cause, "cannot lay out %s", name)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidElement Code = "INVALID_ELEMENT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidOption  Code = "INVALID_OPTION"

	// Recipe trees the layout engine refuses.
	ErrCodeMalformedTree Code = "MALFORMED_TREE"
	ErrCodeEmptyTree     Code = "EMPTY_TREE"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeUnsupported  Code = "UNSUPPORTED"

	// An optional external tool or backend is not available.
	ErrCodeUnavailable Code = "UNAVAILABLE"

	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeCache    Code = "CACHE_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidElement: http.StatusBadRequest,
	ErrCodeInvalidFormat:  http.StatusBadRequest,
	ErrCodeInvalidOption:  http.StatusBadRequest,
	ErrCodeMalformedTree:  http.StatusBadRequest,
	ErrCodeEmptyTree:      http.StatusBadRequest,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeFileNotFound:   http.StatusNotFound,
	ErrCodeUnsupported:    http.StatusUnsupportedMediaType,
	ErrCodeUnavailable:    http.StatusServiceUnavailable,
	ErrCodeTimeout:        http.StatusGatewayTimeout,
}

// Status returns the HTTP status the API answers with for c. Unknown codes,
// including the empty code, are internal errors.
func (c Code) Status() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like [New] but records cause, which stays reachable through
// errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// UserMessage formats err for display: the message and cause of an *Error
// without its code, or err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	switch {
	case !errors.As(err, &e):
		return err.Error()
	case e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}
