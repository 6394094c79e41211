package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Stage errors surfaced to the operator
	ErrPreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrExternalCommand    ErrorCode = "EXTERNAL_COMMAND_FAILED"
	ErrConfigCorrupt      ErrorCode = "CONFIG_CORRUPT"
	ErrUserCancelled      ErrorCode = "USER_CANCELLED"
	ErrInterrupted        ErrorCode = "INTERRUPTED"

	// Configuration and filesystem errors
	ErrConfigLoad ErrorCode = "CONFIG_LOAD"
	ErrFileAccess ErrorCode = "FILE_ACCESS"
)

// Process exit codes, one per category.
const (
	ExitOK           = 0
	ExitInternal     = 1
	ExitPrecondition = 2
	ExitInvalidInput = 3
	ExitExternal     = 4
	ExitConfig       = 5
	ExitInterrupted  = 130
)

// InstallError is a structured error carrying what failed (Message), why it
// matters (Reason) and how to fix it (Remedy).
type InstallError struct {
	Code    ErrorCode
	Message string
	Reason  string
	Remedy  string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *InstallError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *InstallError) Unwrap() error {
	return e.Wrapped
}

// Is matches any InstallError with the same code
func (e *InstallError) Is(target error) bool {
	var targetErr *InstallError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new InstallError with the given code and message
func New(code ErrorCode, message string) *InstallError {
	return &InstallError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new InstallError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *InstallError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *InstallError {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Wrapped = err
	return e
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *InstallError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithReason sets why the failure matters
func (e *InstallError) WithReason(reason string) *InstallError {
	e.Reason = reason
	return e
}

// WithRemedy sets the concrete remediation step
func (e *InstallError) WithRemedy(remedy string) *InstallError {
	e.Remedy = remedy
	return e
}

// WithDetail adds a detail to the error
func (e *InstallError) WithDetail(key string, value interface{}) *InstallError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Explain renders the what/why/how-to-fix triad, one per line.
func (e *InstallError) Explain() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, "\n  why: %s", e.Reason)
	}
	if e.Remedy != "" {
		fmt.Fprintf(&b, "\n  fix: %s", e.Remedy)
	}
	return b.String()
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an InstallError
func GetErrorCode(err error) ErrorCode {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an InstallError
func GetErrorDetails(err error) map[string]interface{} {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Details
	}
	return nil
}

// AsInstallError returns the outermost InstallError in the chain, if any.
func AsInstallError(err error) (*InstallError, bool) {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr, true
	}
	return nil, false
}

// ExitCode maps an error to the process exit code. A declined prompt is not a
// failure: re-running the stage later is always safe.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetErrorCode(err) {
	case ErrUserCancelled:
		return ExitOK
	case ErrPreconditionFailed:
		return ExitPrecondition
	case ErrInvalidInput:
		return ExitInvalidInput
	case ErrExternalCommand:
		return ExitExternal
	case ErrConfigCorrupt, ErrConfigLoad:
		return ExitConfig
	case ErrInterrupted:
		return ExitInterrupted
	default:
		return ExitInternal
	}
}

// Precondition is a shorthand for the most common stage failure.
func Precondition(message, reason, remedy string) *InstallError {
	return New(ErrPreconditionFailed, message).WithReason(reason).WithRemedy(remedy)
}

// Cancelled reports that the operator declined to continue.
func Cancelled(message string) *InstallError {
	return New(ErrUserCancelled, message)
}
