package team

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentgraph/agent"
	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/model"
)

// ModelDescription is descriptive worker metadata consumed when building the
// leader's dispatch prompt. It has no effect on execution itself.
type ModelDescription struct {
	// Name of the model backing the worker.
	Name string `json:"name"`
	// Description of what the worker is good at.
	Description string `json:"description"`
	// Capabilities tags (e.g. "reasoning", "coding", "math").
	Capabilities []string `json:"capabilities"`
	// ContextWindow size in tokens.
	ContextWindow int `json:"context_window"`
	// MaxTokens the model can generate.
	MaxTokens int `json:"max_tokens"`
}

// String renders the description for embedding in leader prompts.
func (d ModelDescription) String() string {
	return fmt.Sprintf("Model: %s\nDescription: %s\nCapabilities: %v\nContext Window: %d\nMax Tokens: %d",
		d.Name, d.Description, d.Capabilities, d.ContextWindow, d.MaxTokens)
}

// Exchange records one worker invocation in a run transcript.
type Exchange struct {
	Worker  string
	Subtask string
	Result  string
}

// DefaultMaxIterations bounds the dispatch loop unless overridden.
const DefaultMaxIterations = 10

// Options configures a team Workflow.
type Options struct {
	// MaxIterations bounds the leader decision loop. A run that has not
	// produced a final answer within this many iterations fails with
	// ErrDispatchLimitExceeded.
	MaxIterations int

	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// workerEntry pairs a worker agent with its descriptive metadata.
type workerEntry struct {
	agent core.Agent
	desc  ModelDescription
}

// Workflow orchestrates a team of worker agents directed by a leader. The
// registry is built once during setup and is read-only for every run; each
// run's transcript is exclusively owned by that run.
type Workflow struct {
	name        string
	description string

	mu      sync.RWMutex
	workers map[string]workerEntry
	order   []string // registration order, for stable prompt listings
	leader  Leader

	maxIterations int
	logger        logging.Logger
}

// New creates an empty team workflow.
func New(name, description string, optFns ...func(o *Options)) *Workflow {
	opts := Options{
		MaxIterations: DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Workflow{
		name:          name,
		description:   description,
		workers:       make(map[string]workerEntry),
		maxIterations: opts.MaxIterations,
		logger:        opts.Logger,
	}
}

// Name returns the workflow's name.
func (w *Workflow) Name() string { return w.name }

// Description returns the workflow's description.
func (w *Workflow) Description() string { return w.description }

// RegisterModel builds a model-backed worker agent under the given name and
// records it with its description. Registering an existing name replaces the
// previous worker.
func (w *Workflow) RegisterModel(name string, m model.Model, desc ModelDescription) {
	worker := agent.NewModelAgent(name, m, func(o *agent.ModelOptions) {
		o.Description = desc.Description
	})
	w.RegisterWorker(worker, desc)
}

// RegisterWorker records a worker agent with its descriptive metadata.
// Registering an existing name replaces the previous worker.
func (w *Workflow) RegisterWorker(a core.Agent, desc ModelDescription) {
	w.mu.Lock()
	defer w.mu.Unlock()

	name := a.Name()
	if _, exists := w.workers[name]; !exists {
		w.order = append(w.order, name)
	}
	w.workers[name] = workerEntry{agent: a, desc: desc}

	w.logger.Debug("worker registered", "workflow", w.name, "worker", name)
}

// SetLeader installs the agent directing the dispatch loop, wrapped in the
// default prompt-building and decision-decoding Leader implementation.
func (w *Workflow) SetLeader(a core.Agent) {
	w.SetLeaderDecider(NewModelLeader(a))
}

// SetLeaderDecider installs a custom Leader implementation.
func (w *Workflow) SetLeaderDecider(l Leader) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.leader = l
}

// Workers returns the registered worker descriptions in registration order.
func (w *Workflow) Workers() []ModelDescription {
	w.mu.RLock()
	defer w.mu.RUnlock()

	descs := make([]ModelDescription, 0, len(w.order))
	for _, name := range w.order {
		descs = append(descs, w.workers[name].desc)
	}
	return descs
}

// Execute runs the leader-directed dispatch loop for the given task and
// returns the leader's final answer.
//
// The loop is strictly sequential: leader decision, then at most one worker
// invocation, then back to the leader with the extended transcript. Any
// failure (leader error, undecodable decision, unknown worker, worker error,
// iteration bound exceeded) is fatal to the run.
func (w *Workflow) Execute(ctx context.Context, task string) (string, error) {
	w.mu.RLock()
	leader := w.leader
	w.mu.RUnlock()

	if leader == nil {
		return "", ErrLeaderNotSet
	}

	runID := uuid.NewString()
	descs := w.Workers()
	started := time.Now()

	w.logger.Debug("team run started", "workflow", w.name, "run_id", runID,
		"workers", len(descs))

	var transcript []Exchange

	for i := 0; i < w.maxIterations; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		decision, err := leader.Decide(ctx, task, transcript, descs)
		if err != nil {
			return "", fmt.Errorf("leader decision: %w", err)
		}

		// Custom Leader implementations are not trusted to self-validate.
		if err := decision.Validate(); err != nil {
			return "", err
		}

		if decision.Final != nil {
			w.logger.Info("team run completed", "workflow", w.name, "run_id", runID,
				"iterations", i+1, "duration", time.Since(started))
			return decision.Final.Answer, nil
		}

		dispatch := decision.Dispatch

		w.mu.RLock()
		entry, ok := w.workers[dispatch.Worker]
		w.mu.RUnlock()
		if !ok {
			return "", &WorkerNotFoundError{Name: dispatch.Worker}
		}

		w.logger.Info("worker dispatched", "workflow", w.name, "run_id", runID,
			"worker", dispatch.Worker, "iteration", i+1)

		result, err := entry.agent.Run(ctx, dispatch.Subtask)
		if err != nil {
			return "", fmt.Errorf("worker %q: %w", dispatch.Worker, err)
		}

		transcript = append(transcript, Exchange{
			Worker:  dispatch.Worker,
			Subtask: dispatch.Subtask,
			Result:  result,
		})
	}

	w.logger.Error("team run exceeded dispatch limit", "workflow", w.name,
		"run_id", runID, "max_iterations", w.maxIterations)

	return "", ErrDispatchLimitExceeded
}
