package repository

import "fmt"

// ExternalServiceError wraps a failure at the external LLM boundary. The
// orchestrator recognizes it and answers with a fallback response instead of
// surfacing the raw error to the user.
type ExternalServiceError struct {
	Provider string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s failed: %v", e.Provider, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
