package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	// ErrNotFound is the normal empty result of a lookup, e.g. no pending item.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateSequence = errors.New("duplicate sequence: a work item with this sequence already exists")
	ErrAlreadyPosted     = errors.New("work item is no longer pending")
	ErrInvalidSequence   = errors.New("sequence must be a positive integer")
	ErrInvalidStatus     = errors.New("invalid status: must be pending or posted")
	ErrMissingField      = errors.New("phase, topic, todayTask and challenges must not be empty")
	ErrStoreNotEmpty     = errors.New("store already holds work items")
)

// GenerationError reports that the generative backend returned nothing usable.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PublishError reports a transport, auth or API failure from the publishing backend.
// Body carries the response body when one was received.
type PublishError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *PublishError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("publish failed: %v", e.Err)
	case e.Body != "":
		return fmt.Sprintf("publish failed: status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("publish failed: status %d", e.StatusCode)
	}
}

func (e *PublishError) Unwrap() error { return e.Err }

// StoreError wraps a read or write failure against the work item collection.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is or wraps a *GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
