package app

import "fmt"

// CommonError represents application-level errors with a stable code the
// CLI can map to exit behavior.
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRootAccess   = "ROOT_ACCESS"
	ErrCodePermission   = "PERMISSION_DENIED"
	ErrCodeInterrupted  = "INTERRUPTED"
)

// NewError creates a new CommonError.
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
