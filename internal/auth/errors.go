package auth

import (
	"errors"

	"github.com/hanbit-dev/authportal-backend/internal/otp"
)

// Machine-readable codes surfaced to the client as redirect query
// parameters. USER_NOT_FOUND deliberately never says which field failed
// to match, and the OTP codes come straight from the engine.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeTokenInvalid    = "TOKEN_INVALID"
)

// FlowError is a recoverable, user-facing failure of a recovery or reset
// step. Anything else coming out of a service is a downstream fault the
// handler turns into a generic failure response.
type FlowError struct {
	Code        string
	FieldErrors map[string]string
}

func (e *FlowError) Error() string {
	return e.Code
}

func validationError(fieldErrors map[string]string) *FlowError {
	return &FlowError{Code: CodeValidationError, FieldErrors: fieldErrors}
}

func userNotFound() *FlowError {
	return &FlowError{Code: CodeUserNotFound}
}

func tokenInvalid() *FlowError {
	return &FlowError{Code: CodeTokenInvalid}
}

// flowErrorFromOTP translates an engine failure into a FlowError, passing
// transport faults through untouched.
func flowErrorFromOTP(err error) error {
	switch {
	case errors.Is(err, otp.ErrNotFound),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrTooManyTries),
		errors.Is(err, otp.ErrInvalid):
		return &FlowError{Code: err.Error()}
	default:
		return err
	}
}
