package spoonacular

import "fmt"

// StatusError is returned when the upstream API answers with a non-2xx
// status.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

// Error returns the error message.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spoonacular %s returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("spoonacular %s returned status %d: %s", e.Op, e.StatusCode, e.Message)
}

// QuotaExhausted reports whether the upstream rejected the call because the
// API key's daily quota is used up.
func (e *StatusError) QuotaExhausted() bool {
	return e.StatusCode == 402 || e.StatusCode == 429
}
