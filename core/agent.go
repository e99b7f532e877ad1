package core

import "context"

// Agent is the capability contract consumed by the orchestration engines.
//
// Implementations must be safe for concurrent Run calls: a single agent
// instance may participate in many workflow runs at the same time. The
// provided context carries cooperative cancellation; implementations should
// observe it for long-running calls but are never forcibly aborted.
type Agent interface {
	// Name returns the agent's stable identifier. Names must be unique
	// within a workflow; the graph store keys its registry on them.
	Name() string

	// Description returns a human-readable summary of the agent's purpose.
	// Leader agents use worker descriptions when deciding dispatch targets.
	Description() string

	// Run transforms the input text into an output text. A returned error
	// marks the invocation as failed; the orchestration layer decides
	// whether the failure is fatal to the surrounding run.
	Run(ctx context.Context, input string) (string, error)
}
