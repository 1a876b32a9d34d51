package browse

import "fmt"

// ValidationError means the query was rejected before any upstream request
// was issued. Controller state is left unchanged.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// TransportError wraps any failure of the upstream request. Message is the
// generic copy shown to the user; the cause is only for logs.
type TransportError struct {
	Op      string
	Message string
	Err     error
}

// Error returns the error message.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the upstream error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
