package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentgraph/core"
	"golang.org/x/sync/semaphore"
)

// MergeDelimiter separates predecessor outputs when a join node combines
// multiple fired inputs. Components are always concatenated in ascending
// registration-index order, never arrival order.
const MergeDelimiter = "\n\n---\n\n"

// Result carries the outcome of one workflow run.
type Result struct {
	// RunID uniquely identifies the run.
	RunID string

	// Outputs maps terminal node names to their produced output. Terminal
	// nodes are reachable-closure members without outgoing edges.
	Outputs map[string]string

	// Failures lists the node-scoped invocation failures of the run.
	Failures []NodeFailure
}

// nodeInput is a fired value delivered to a join node, tagged with the
// producing node's registration index for deterministic merge ordering.
type nodeInput struct {
	source int
	value  string
}

// nodeState is the per-run, per-node join bookkeeping. All transitions are
// serialized by mu so two predecessors cannot release the same node twice.
type nodeState struct {
	mu       sync.Mutex
	pending  int // unresolved incoming edges from the closure
	inputs   []nodeInput
	resolved bool // scheduled to run, or skipped
	skipped  bool
}

// run is the exclusively-owned execution context of a single workflow run.
type run struct {
	w  *Workflow
	id string

	ctx      context.Context // gates scheduling only
	agentCtx context.Context // detached; in-flight invocations complete
	sem      *semaphore.Weighted
	wg       sync.WaitGroup

	inClosure []bool
	states    []*nodeState

	mu       sync.Mutex
	outputs  map[int]string
	executed map[int]bool
	failures []NodeFailure
}

// Execute runs the workflow from the given start agents, feeding each the
// initial input, and returns the terminal outputs together with any per-node
// failures. The first call permanently freezes the graph structure.
//
// Nodes outside the closure reachable from the start set never run. A node
// whose incoming closure edges are all suppressed is skipped; skips propagate
// forward. An agent failure is recorded against its node without aborting
// independent branches. The run fails only when it yields zero terminal
// outputs (ErrEmptyResult).
//
// Cancelling ctx stops scheduling of not-yet-started nodes; invocations
// already in flight run to completion.
func (w *Workflow) Execute(ctx context.Context, startNames []string, input string) (*Result, error) {
	if len(startNames) == 0 {
		return nil, ErrNoStartAgents
	}

	// Freeze the structure before the first run; mutations in flight finish
	// under w.mu before the closure is computed.
	w.frozen.Store(true)

	w.mu.RLock()
	starts := make([]int, 0, len(startNames))
	seen := make(map[int]bool, len(startNames))
	for _, name := range startNames {
		idx, ok := w.index[name]
		if !ok {
			w.mu.RUnlock()
			return nil, &NotFoundError{Name: name}
		}
		if !seen[idx] {
			seen[idx] = true
			starts = append(starts, idx)
		}
	}
	w.mu.RUnlock()

	r := &run{
		w:        w,
		id:       uuid.NewString(),
		ctx:      ctx,
		agentCtx: context.WithoutCancel(ctx),
		outputs:  make(map[int]string),
		executed: make(map[int]bool),
	}
	if w.maxConcurrent > 0 {
		r.sem = semaphore.NewWeighted(int64(w.maxConcurrent))
	}

	r.computeClosure(starts)

	started := time.Now()
	w.logger.Debug("workflow run started", "workflow", w.name, "run_id", r.id,
		"starts", startNames)

	// Start nodes receive the initial input directly, unmerged. Marking them
	// resolved up front discharges any closure-internal edges pointing at
	// them without contributing input.
	for _, idx := range starts {
		st := r.states[idx]
		st.mu.Lock()
		st.resolved = true
		st.mu.Unlock()
	}
	for _, idx := range starts {
		r.schedule(idx, input)
	}

	r.wg.Wait()

	result := r.collect()
	w.logger.Info("workflow run completed", "workflow", w.name, "run_id", r.id,
		"outputs", len(result.Outputs), "failures", len(result.Failures),
		"duration", time.Since(started))

	if len(result.Outputs) == 0 {
		// The partial result still carries the per-node failures.
		return result, ErrEmptyResult
	}

	return result, nil
}

// ExecuteAgent invokes a single registered agent by name, outside of any
// graph run. It does not freeze the graph.
func (w *Workflow) ExecuteAgent(ctx context.Context, name, input string) (string, error) {
	w.mu.RLock()
	var a core.Agent
	if idx, ok := w.index[name]; ok {
		a = w.nodes[idx].agent
	}
	w.mu.RUnlock()

	if a == nil {
		return "", &NotFoundError{Name: name}
	}

	return a.Run(ctx, input)
}

// computeClosure marks all nodes transitively reachable from the start set
// and initializes per-node join counters: each node's pending count is the
// number of incoming edges whose source lies inside the closure.
func (r *run) computeClosure(starts []int) {
	n := len(r.w.nodes)
	r.inClosure = make([]bool, n)
	r.states = make([]*nodeState, n)

	stack := append([]int(nil), starts...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.inClosure[cur] {
			continue
		}
		r.inClosure[cur] = true
		for _, eid := range r.w.nodes[cur].outgoing {
			stack = append(stack, r.w.edges[eid].to)
		}
	}

	for i := 0; i < n; i++ {
		if !r.inClosure[i] {
			continue
		}
		st := &nodeState{}
		for _, eid := range r.w.nodes[i].incoming {
			if r.inClosure[r.w.edges[eid].from] {
				st.pending++
			}
		}
		r.states[i] = st
	}
}

// schedule launches the agent invocation for a ready node. Cancellation is
// checked here so a raised signal blocks further scheduling while leaving
// in-flight invocations untouched.
func (r *run) schedule(idx int, input string) {
	if r.ctx.Err() != nil {
		r.w.logger.Warn("run cancelled, node not scheduled", "run_id", r.id,
			"agent", r.w.nodes[idx].agent.Name())
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if r.sem != nil {
			if err := r.sem.Acquire(r.ctx, 1); err != nil {
				return
			}
			defer r.sem.Release(1)
		}

		a := r.w.nodes[idx].agent
		started := time.Now()
		output, err := a.Run(r.agentCtx, input)
		if err != nil {
			r.w.logger.Error("agent invocation failed", "run_id", r.id,
				"agent", a.Name(), "duration", time.Since(started), "error", err)
			r.mu.Lock()
			r.failures = append(r.failures, NodeFailure{Agent: a.Name(), Err: err})
			r.mu.Unlock()
			// A failed node produces no output; its outgoing edges cannot fire.
			r.resolveOutgoing(idx, "", false)
			return
		}

		r.w.logger.Debug("agent invocation completed", "run_id", r.id,
			"agent", a.Name(), "duration", time.Since(started))

		r.mu.Lock()
		r.outputs[idx] = output
		r.executed[idx] = true
		r.mu.Unlock()

		r.resolveOutgoing(idx, output, true)
	}()
}

// resolveOutgoing settles every outgoing edge of a node: fired edges deliver
// their (possibly transformed) value downstream, suppressed edges only
// discharge the target's join counter. produced is false when the node failed
// or was skipped, in which case no edge can fire.
func (r *run) resolveOutgoing(idx int, output string, produced bool) {
	for _, eid := range r.w.nodes[idx].outgoing {
		e := r.w.edges[eid]
		if produced && e.flow.Fires(output) {
			r.deliver(e.to, idx, e.flow.Propagate(output), true)
		} else {
			r.deliver(e.to, idx, "", false)
		}
	}
}

// deliver records one settled incoming edge on the target node and, when the
// node becomes ready, either schedules it with its merged input or marks it
// skipped (all incoming edges suppressed) and propagates the skip forward.
func (r *run) deliver(target, source int, value string, fired bool) {
	st := r.states[target]

	st.mu.Lock()
	if fired {
		st.inputs = append(st.inputs, nodeInput{source: source, value: value})
	}
	st.pending--

	var launch, skip bool
	var merged string
	if st.pending <= 0 && !st.resolved {
		st.resolved = true
		if len(st.inputs) == 0 {
			st.skipped = true
			skip = true
		} else {
			merged = mergeInputs(st.inputs)
			launch = true
		}
	}
	st.mu.Unlock()

	if launch {
		r.schedule(target, merged)
	}
	if skip {
		r.w.logger.Debug("node skipped, all incoming edges suppressed",
			"run_id", r.id, "agent", r.w.nodes[target].agent.Name())
		r.resolveOutgoing(target, "", false)
	}
}

// mergeInputs combines fired predecessor values deterministically: ascending
// registration-index order joined with MergeDelimiter. A single input passes
// through unchanged so transform exactness is preserved on linear paths.
func mergeInputs(inputs []nodeInput) string {
	if len(inputs) == 1 {
		return inputs[0].value
	}

	sorted := append([]nodeInput(nil), inputs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].source < sorted[j].source })

	parts := make([]string, len(sorted))
	for i, in := range sorted {
		parts[i] = in.value
	}

	return strings.Join(parts, MergeDelimiter)
}

// collect assembles the run result: terminal nodes are closure members
// without outgoing edges that executed successfully.
func (r *run) collect() *Result {
	result := &Result{
		RunID:   r.id,
		Outputs: make(map[string]string),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.w.nodes {
		if !r.inClosure[i] || len(n.outgoing) > 0 {
			continue
		}
		if out, ok := r.outputs[i]; ok {
			result.Outputs[n.agent.Name()] = out
		}
	}
	result.Failures = append(result.Failures, r.failures...)

	return result
}
