package team

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/internal/util"
)

// Dispatch instructs the workflow to run one worker on a subtask.
type Dispatch struct {
	// Worker is the name of the registered worker to invoke.
	Worker string `json:"worker" description:"Name of the worker to dispatch to"`
	// Subtask is the instruction passed to the worker.
	Subtask string `json:"subtask" description:"The subtask for the worker to perform"`
}

// Final carries the leader's final answer, ending the run.
type Final struct {
	// Answer is the completed result for the original task.
	Answer string `json:"answer" description:"The final answer for the task"`
}

// Decision is the leader's structured choice for one loop iteration. Exactly
// one of Dispatch or Final must be set.
type Decision struct {
	Dispatch *Dispatch `json:"dispatch,omitempty"`
	Final    *Final    `json:"final,omitempty"`
}

// Validate checks that exactly one variant is populated.
func (d Decision) Validate() error {
	switch {
	case d.Dispatch == nil && d.Final == nil:
		return fmt.Errorf("%w: neither dispatch nor final set", ErrInvalidDecision)
	case d.Dispatch != nil && d.Final != nil:
		return fmt.Errorf("%w: both dispatch and final set", ErrInvalidDecision)
	}
	return nil
}

// Leader decides, for each iteration of a team run, whether to dispatch a
// subtask to a worker or to finalize the run with an answer.
type Leader interface {
	Decide(ctx context.Context, task string, transcript []Exchange, workers []ModelDescription) (Decision, error)
}

// ModelLeader drives an agent with a structured dispatch prompt and decodes
// its reply into a Decision. It is the default Leader installed by SetLeader.
type ModelLeader struct {
	agent core.Agent
}

// NewModelLeader wraps an agent as a Leader.
func NewModelLeader(a core.Agent) *ModelLeader {
	return &ModelLeader{agent: a}
}

// Decide builds the dispatch prompt, runs the wrapped agent and decodes the
// reply. A reply that cannot be decoded into a valid Decision fails with
// ErrInvalidDecision.
func (l *ModelLeader) Decide(ctx context.Context, task string, transcript []Exchange, workers []ModelDescription) (Decision, error) {
	prompt := buildLeaderPrompt(task, transcript, workers)

	raw, err := l.agent.Run(ctx, prompt)
	if err != nil {
		return Decision{}, fmt.Errorf("leader agent: %w", err)
	}

	return DecodeDecision(raw)
}

// DecodeDecision extracts the JSON object from a raw leader reply and decodes
// it into a Decision. Text surrounding the object is tolerated.
func DecodeDecision(raw string) (Decision, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return Decision{}, fmt.Errorf("%w: no JSON object in reply", ErrInvalidDecision)
	}

	var decision Decision
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decision); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}

	if err := decision.Validate(); err != nil {
		return Decision{}, err
	}

	return decision, nil
}

// buildLeaderPrompt assembles the task, worker roster, transcript and decision
// schema into a single instruction for the leader agent.
func buildLeaderPrompt(task string, transcript []Exchange, workers []ModelDescription) string {
	schema, err := json.MarshalIndent(util.CreateSchema(Decision{}), "", "  ")
	if err != nil {
		schema = []byte("{}")
	}

	var b strings.Builder

	b.WriteString("You are the leader of a team of worker agents. Your job is to complete the task below by dispatching subtasks to workers one at a time, then producing a final answer.\n\n")

	fmt.Fprintf(&b, "Task:\n%s\n\n", task)

	b.WriteString("Available workers:\n")
	for _, w := range workers {
		fmt.Fprintf(&b, "---\n%s\n", w.String())
	}
	b.WriteString("---\n\n")

	if len(transcript) == 0 {
		b.WriteString("No subtasks have been dispatched yet.\n\n")
	} else {
		b.WriteString("Completed subtasks:\n")
		for i, e := range transcript {
			fmt.Fprintf(&b, "%d. Worker %q was asked:\n%s\nResult:\n%s\n\n", i+1, e.Worker, e.Subtask, e.Result)
		}
	}

	b.WriteString("Decide the next step. Respond with a single JSON object matching this schema:\n")
	fmt.Fprintf(&b, "%s\n\n", schema)
	b.WriteString("Set exactly one of \"dispatch\" or \"final\". Use \"dispatch\" to send a subtask to one worker; use \"final\" when the task is complete.\n")

	return b.String()
}
