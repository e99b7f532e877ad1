package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentgraph/model"
)

// ModelOptions configures a ModelAgent.
type ModelOptions struct {
	// Description summarizes the agent's purpose. Surfaced to leader agents
	// when deciding dispatch targets.
	Description string

	// Instructions is the system prompt sent with every generation request.
	Instructions string
}

// ModelAgent implements core.Agent on top of a model.Model. Each Run issues a
// single generation turn: the agent's instructions plus the run input.
type ModelAgent struct {
	name  string
	opts  ModelOptions
	model model.Model
}

// NewModelAgent creates a model-backed agent.
func NewModelAgent(name string, m model.Model, optFns ...func(o *ModelOptions)) *ModelAgent {
	opts := ModelOptions{
		Description: fmt.Sprintf("Agent %s", name),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelAgent{name: name, opts: opts, model: m}
}

// Name returns the agent's stable identifier.
func (a *ModelAgent) Name() string { return a.name }

// Description returns a human-readable summary of the agent's purpose.
func (a *ModelAgent) Description() string { return a.opts.Description }

// Run implements core.Agent by generating a single model completion.
func (a *ModelAgent) Run(ctx context.Context, input string) (string, error) {
	resp, err := a.model.Generate(ctx, model.Request{
		Instructions: a.opts.Instructions,
		Input:        input,
	})
	if err != nil {
		return "", fmt.Errorf("model %s: %w", a.model.Info().Name, err)
	}
	return resp.Text, nil
}
