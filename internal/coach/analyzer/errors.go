package analyzer

import "fmt"

// ValidationError reports a missing or malformed analyzer input. It is
// surfaced to the caller immediately and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}
