package session

// Code is a machine-readable error code carried across the transport
// boundary.
type Code string

const (
	// CodeSessionNotFound reports a round submitted for a session that was
	// never joined.
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	// CodeInvalidControls reports player controls outside the playable
	// domain.
	CodeInvalidControls Code = "INVALID_CONTROLS"
	// CodeValidationFailed reports a computed state outside the model's
	// guard bounds; the round was not committed.
	CodeValidationFailed Code = "VALIDATION_FAILED"
	// CodeMissingExogenousData reports a fatal misconfiguration: the
	// exogenous table is empty or the previous state is absent.
	CodeMissingExogenousData Code = "MISSING_EXOGENOUS_DATA"
)

// Error is the session domain error type with a structured code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a session error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates a session error that wraps an underlying cause.
func WrapError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
