package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrorMissingInput       ErrorCode = "MISSING_INPUT"
	ErrorInvalidPersona     ErrorCode = "INVALID_PERSONA"
	ErrorConflict           ErrorCode = "CONFLICT"
	ErrorBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrorRateLimited        ErrorCode = "RATE_LIMITED"
	ErrorUpstream           ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal           ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds an Error for callers outside the package, such as a remote
// client translating an HTTP error body.
func NewError(code ErrorCode, reason string, err error) *Error {
	return newError(code, reason, err)
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
