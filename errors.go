package framegov

import (
	"errors"
	"fmt"
)

// Standard errors.
var (
	// ErrSchedulerDestroyed is returned when operations are attempted on a
	// scheduler after Destroy.
	ErrSchedulerDestroyed = errors.New("framegov: scheduler has been destroyed")

	// ErrDuplicateRegistration is the cause recorded when a consumer name is
	// already present in the registry. Register returns false rather than
	// surfacing this directly; it exists for log/error matching.
	ErrDuplicateRegistration = errors.New("framegov: consumer already registered")
)

// ConsumerPanicError wraps a panic recovered from a consumer's Tick callback.
// The offending consumer is permanently disabled; the error is logged and
// never propagates out of the tick loop.
type ConsumerPanicError struct {
	// Name is the registry key of the consumer that panicked.
	Name string
	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *ConsumerPanicError) Error() string {
	return fmt.Sprintf("framegov: consumer %q panicked: %v", e.Name, e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type,
// enabling use with [errors.Is] and [errors.As] through the cause chain. If
// the value is not an error (e.g. a string), it returns nil.
func (e *ConsumerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
