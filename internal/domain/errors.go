package domain

import (
	"errors"
	"fmt"

	"wfm_flipper/pkg/errcodes"
)

// AppError is a domain error with a stable code the HTTP layer maps to a
// status.
type AppError struct {
	Code    errcodes.ErrorCode
	Message string
	// Status carries the upstream HTTP status for UpstreamHttpError.
	Status int
	cause  error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

func NewError(code errcodes.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func WrapError(err error, code errcodes.ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   err,
	}
}

// NewUpstreamError reports a non-success response from the market API.
func NewUpstreamError(status int, message string) *AppError {
	return &AppError{
		Code:    errcodes.UpstreamHTTPError,
		Message: message,
		Status:  status,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func GetCode(err error) (errcodes.ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// HasCode reports whether the outermost AppError in err's chain carries code.
func HasCode(err error, code errcodes.ErrorCode) bool {
	got, ok := GetCode(err)
	return ok && got == code
}

// Description returns the message of the outermost AppError, or err.Error().
func Description(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
