package agent

import "context"

// Func adapts an ordinary function to the core.Agent contract. The function
// must be safe for concurrent invocation.
type Func struct {
	name        string
	description string
	fn          func(ctx context.Context, input string) (string, error)
}

// NewFunc creates a function-backed agent.
func NewFunc(name, description string, fn func(ctx context.Context, input string) (string, error)) *Func {
	return &Func{name: name, description: description, fn: fn}
}

// Name returns the agent's stable identifier.
func (f *Func) Name() string { return f.name }

// Description returns a human-readable summary of the agent's purpose.
func (f *Func) Description() string { return f.description }

// Run implements core.Agent.
func (f *Func) Run(ctx context.Context, input string) (string, error) {
	return f.fn(ctx, input)
}
