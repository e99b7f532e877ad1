package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAgent is returned when registering an agent whose name is
	// already present in the graph.
	ErrDuplicateAgent = errors.New("agent already registered")

	// ErrAgentNotFound is the sentinel wrapped by NotFoundError.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrEdgeNotFound is returned by Disconnect for an unknown or already
	// removed edge handle.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrCycleDetected is returned when a connection would close a cycle.
	// The graph is left unmodified.
	ErrCycleDetected = errors.New("cycle detected in workflow")

	// ErrFrozen is returned by Register and Connect once execution has
	// started; the structure is immutable from the first run onward.
	ErrFrozen = errors.New("workflow is frozen once execution has started")

	// ErrNoStartAgents is returned by Execute when the start set is empty.
	ErrNoStartAgents = errors.New("no start agents provided")

	// ErrEmptyResult is returned when a run produces no terminal output.
	ErrEmptyResult = errors.New("workflow produced no terminal output")
)

// NotFoundError reports an unregistered agent name. It unwraps to
// ErrAgentNotFound for errors.Is matching.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found", e.Name)
}

// Unwrap returns the sentinel ErrAgentNotFound.
func (e *NotFoundError) Unwrap() error { return ErrAgentNotFound }

// NodeFailure records a failed agent invocation within a run. Failures are
// node-scoped: independent branches of the same run continue executing.
type NodeFailure struct {
	Agent string
	Err   error
}

// Error implements the error interface.
func (f NodeFailure) Error() string {
	return fmt.Sprintf("agent %q failed: %v", f.Agent, f.Err)
}

// Unwrap returns the underlying invocation error.
func (f NodeFailure) Unwrap() error { return f.Err }
