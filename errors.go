package semantic

import "fmt"

// ValidationError reports rejected request input. The HTTP layer maps it
// to a 400 response; it is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ComputationError reports an internal pipeline failure (embedding call
// failed, malformed matrix shapes, clustering failure). The HTTP layer
// maps it to a 500 response with the underlying message.
type ComputationError struct {
	Stage string
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
