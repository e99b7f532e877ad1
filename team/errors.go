package team

import (
	"errors"
	"fmt"
)

var (
	// ErrLeaderNotSet is returned by Execute when no leader is configured.
	ErrLeaderNotSet = errors.New("leader agent not set")

	// ErrWorkerNotFound is the sentinel wrapped by WorkerNotFoundError.
	// A dispatch to an unregistered worker is run-fatal.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrDispatchLimitExceeded is returned when the leader has not produced
	// a final answer within the configured iteration bound.
	ErrDispatchLimitExceeded = errors.New("dispatch limit exceeded")

	// ErrInvalidDecision is returned when a leader reply cannot be decoded
	// into exactly one of the dispatch/final variants.
	ErrInvalidDecision = errors.New("invalid leader decision")
)

// WorkerNotFoundError reports a dispatch targeting an unregistered worker.
// It unwraps to ErrWorkerNotFound for errors.Is matching.
type WorkerNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *WorkerNotFoundError) Error() string {
	return fmt.Sprintf("worker %q not found", e.Name)
}

// Unwrap returns the sentinel ErrWorkerNotFound.
func (e *WorkerNotFoundError) Unwrap() error { return ErrWorkerNotFound }
