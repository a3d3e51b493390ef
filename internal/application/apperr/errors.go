package apperr

import (
	"context"
	"errors"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeNotFound     Code = "NOT_FOUND"
	CodeExpired      Code = "EXPIRED"
	CodeInvalidJSON  Code = "INVALID_JSON"
	CodeFileTooLarge Code = "FILE_TOO_LARGE"
	CodeConflict     Code = "CONFLICT"
	CodeServer       Code = "SERVER_ERROR"
	CodeTimeout      Code = "TIMEOUT"
	CodeRateLimited  Code = "RATE_LIMITED"
)

var statuses = map[Code]int{
	CodeValidation:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeNotFound:     http.StatusNotFound,
	CodeExpired:      http.StatusGone,
	CodeInvalidJSON:  http.StatusBadRequest,
	CodeFileTooLarge: http.StatusRequestEntityTooLarge,
	CodeConflict:     http.StatusConflict,
	CodeServer:       http.StatusInternalServerError,
	CodeTimeout:      http.StatusRequestTimeout,
	CodeRateLimited:  http.StatusTooManyRequests,
}

// HTTPStatus maps an error code to its transport status. Unknown codes are 500.
func HTTPStatus(code Code) int {
	if s, ok := statuses[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is the single failure shape returned by the application layer.
// Err holds the underlying cause; it is logged but only exposed to callers
// in development mode.
type Error struct {
	Code    Code
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return HTTPStatus(e.Code) }

func New(code Code, msg string) *Error { return &Error{Code: code, Message: msg} }

func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func Validation(msg string) *Error   { return New(CodeValidation, msg) }
func Unauthorized(msg string) *Error { return New(CodeUnauthorized, msg) }
func NotFound(msg string) *Error     { return New(CodeNotFound, msg) }
func Expired(msg string) *Error      { return New(CodeExpired, msg) }
func InvalidJSON(msg string) *Error  { return New(CodeInvalidJSON, msg) }
func TooLarge(msg string) *Error     { return New(CodeFileTooLarge, msg) }

// Store classifies an unexpected datastore failure: deadline errors become
// TIMEOUT, everything else SERVER_ERROR.
func Store(msg string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(CodeTimeout, "request timeout", err)
	}
	return Wrap(CodeServer, msg, err)
}

// As extracts an *Error from err. Anything else is reported as SERVER_ERROR.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Store("internal server error", err)
}

// IsCode reports whether err is an *Error carrying code.
func IsCode(err error, code Code) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
