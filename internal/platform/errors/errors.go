package errors

// Domain is the error domain for Driftmark errors.
const Domain = "github.com/mverett/driftmark"

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/diagnostics)
	Metadata map[string]string // Additional context (offending id, current phase)
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Kind returns the taxonomy bucket for this error.
func (e *Error) Kind() Kind {
	return e.Code.ErrKind()
}

// WithMetadata creates a domain error with metadata for caller-facing context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}
