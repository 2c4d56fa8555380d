package errors

import "fmt"

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code, message string, cause ...error) *AppError {
	var c error
	if len(cause) > 0 {
		c = cause[0]
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   c,
	}
}

// Error codes group by concern: INPUT for malformed values, per-entity
// NOTFOUND codes, STATE-like ACCESS_002 for illegal transitions, AUTH for
// identity failures.
const (
	CodeConfigNotFound = "CONFIG_001"
	CodeConfigInvalid  = "CONFIG_002"

	CodeInvalidInput = "INPUT_001"

	CodeProfileNotFound     = "PROFILE_001"
	CodeMeasurementNotFound = "MEASURE_001"
	CodeVitalNotFound       = "VITAL_001"
	CodeRequestNotFound     = "ACCESS_001"
	CodeRequestResolved     = "ACCESS_002"

	CodeUnauthorized = "AUTH_001"
	CodeForbidden    = "AUTH_002"

	CodeNotFound   = "GEN_001"
	CodeBadRequest = "GEN_002"
	CodeInternal   = "GEN_003"
)

var (
	ErrConfigNotFound = &AppError{Code: CodeConfigNotFound, Message: "configuration not found"}
	ErrConfigInvalid  = &AppError{Code: CodeConfigInvalid, Message: "invalid configuration"}

	ErrInvalidInput = &AppError{Code: CodeInvalidInput, Message: "invalid input"}

	ErrProfileNotFound     = &AppError{Code: CodeProfileNotFound, Message: "health profile not found"}
	ErrMeasurementNotFound = &AppError{Code: CodeMeasurementNotFound, Message: "body measurement not found"}
	ErrVitalNotFound       = &AppError{Code: CodeVitalNotFound, Message: "vital sign record not found"}

	ErrRequestNotFound = &AppError{Code: CodeRequestNotFound, Message: "access request not found"}
	ErrRequestResolved = &AppError{Code: CodeRequestResolved, Message: "access request already resolved"}

	ErrUnauthorized = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &AppError{Code: CodeForbidden, Message: "forbidden"}

	ErrNotFound   = &AppError{Code: CodeNotFound, Message: "resource not found"}
	ErrBadRequest = &AppError{Code: CodeBadRequest, Message: "bad request"}
	ErrInternal   = &AppError{Code: CodeInternal, Message: "internal error"}
)

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// InvalidInput builds an INPUT_001 error with a specific message.
func InvalidInput(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}
