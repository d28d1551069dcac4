package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes surfaced to the CLI.
const (
	CodeInput   = "INPUT_ERROR"
	CodeOutput  = "OUTPUT_ERROR"
	CodeConfig  = "CONFIG_ERROR"
	CodeProfile = "PROFILE_ERROR"
	CodeLedger  = "LEDGER_ERROR"
)

// Common application errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrNoText            = errors.New("no extractable text")
	ErrInternal          = errors.New("internal error")
	ErrDatabase          = errors.New("database error")
	ErrValidation        = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InputError marks a fatal problem with the document being read.
func InputError(message string, cause error) error {
	return NewAppError(CodeInput, message, cause)
}

// OutputError marks a fatal problem persisting results.
func OutputError(message string, cause error) error {
	return NewAppError(CodeOutput, message, cause)
}

// ErrorCode returns the AppError code in err's chain, or "" when there is none.
func ErrorCode(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
