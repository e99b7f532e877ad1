package graph

import (
	"sync"
	"sync/atomic"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/flow"
	"github.com/hupe1980/agentgraph/logging"
)

// EdgeID identifies a committed edge within its workflow.
type EdgeID int

// Options configures a Workflow instance.
type Options struct {
	// MaxConcurrentInvocations limits the number of agent invocations a
	// single run may execute simultaneously. Set to 0 for unlimited.
	MaxConcurrentInvocations int

	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger
}

// DefaultMaxConcurrentInvocations bounds per-run concurrency unless overridden.
const DefaultMaxConcurrentInvocations = 10

// node pairs a registered agent with its stable registration index and the
// edge lists used by the scheduler.
type node struct {
	agent    core.Agent
	index    int
	outgoing []EdgeID
	incoming []EdgeID
	removed  bool
}

// edge is a flow-labeled directed connection between two nodes.
type edge struct {
	id   EdgeID
	from int
	to   int
	flow flow.Flow
}

// Workflow is the graph store: registered agents, flow-labeled edges and the
// acyclicity invariant. It is mutable during the registration phase and
// frozen permanently by the first Execute call, after which it is safe for
// unlimited concurrent runs.
type Workflow struct {
	name        string
	description string

	mu     sync.RWMutex
	nodes  []*node
	index  map[string]int
	edges  []*edge
	frozen atomic.Bool

	maxConcurrent int
	logger        logging.Logger
}

// New creates an empty workflow graph.
func New(name, description string, optFns ...func(o *Options)) *Workflow {
	opts := Options{
		MaxConcurrentInvocations: DefaultMaxConcurrentInvocations,
		Logger:                   logging.NoOpLogger{},
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
		index:         make(map[string]int),
		maxConcurrent: opts.MaxConcurrentInvocations,
		logger:        opts.Logger,
	}
}

// Name returns the workflow's name.
func (w *Workflow) Name() string { return w.name }

// Description returns the workflow's description.
func (w *Workflow) Description() string { return w.description }

// Register adds an agent as a new node. It fails with ErrDuplicateAgent if
// the name is already registered and with ErrFrozen once execution has
// started. On failure the graph is unmodified.
func (w *Workflow) Register(a core.Agent) error {
	if w.frozen.Load() {
		return ErrFrozen
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	name := a.Name()
	if _, exists := w.index[name]; exists {
		return ErrDuplicateAgent
	}

	idx := len(w.nodes)
	w.nodes = append(w.nodes, &node{agent: a, index: idx})
	w.index[name] = idx

	w.logger.Debug("agent registered", "workflow", w.name, "agent", name, "index", idx)

	return nil
}

// Connect adds a flow-labeled edge between two registered agents. The edge is
// committed only if it keeps the graph acyclic; a rejected connection leaves
// the graph unmodified. Returns the committed edge's handle.
func (w *Workflow) Connect(from, to string, f flow.Flow) (EdgeID, error) {
	if w.frozen.Load() {
		return 0, ErrFrozen
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	fromIdx, ok := w.index[from]
	if !ok {
		return 0, &NotFoundError{Name: from}
	}
	toIdx, ok := w.index[to]
	if !ok {
		return 0, &NotFoundError{Name: to}
	}

	// The tentative edge from->to closes a cycle exactly when a path already
	// leads from to back to from.
	if fromIdx == toIdx || w.reaches(toIdx, fromIdx) {
		return 0, ErrCycleDetected
	}

	id := EdgeID(len(w.edges))
	w.edges = append(w.edges, &edge{id: id, from: fromIdx, to: toIdx, flow: f})
	w.nodes[fromIdx].outgoing = append(w.nodes[fromIdx].outgoing, id)
	w.nodes[toIdx].incoming = append(w.nodes[toIdx].incoming, id)

	w.logger.Debug("agents connected", "workflow", w.name, "from", from, "to", to,
		"condition", f.HasCondition(), "transform", f.HasTransform())

	return id, nil
}

// Disconnect removes a previously committed edge by its handle. It fails with
// ErrEdgeNotFound for an unknown or already removed handle and with ErrFrozen
// once execution has started. Edge handles are never reused.
func (w *Workflow) Disconnect(id EdgeID) error {
	if w.frozen.Load() {
		return ErrFrozen
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if int(id) < 0 || int(id) >= len(w.edges) || w.edges[id] == nil {
		return ErrEdgeNotFound
	}

	e := w.edges[id]
	w.logger.Debug("agents disconnected", "workflow", w.name,
		"from", w.nodes[e.from].agent.Name(), "to", w.nodes[e.to].agent.Name())

	w.removeEdgeLocked(id)

	return nil
}

// Remove deletes a registered agent together with its incident edges. The
// name becomes available for re-registration; registration indices of the
// remaining nodes are unchanged. Fails with ErrFrozen once execution has
// started. On failure the graph is unmodified.
func (w *Workflow) Remove(name string) error {
	if w.frozen.Load() {
		return ErrFrozen
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	idx, ok := w.index[name]
	if !ok {
		return &NotFoundError{Name: name}
	}

	n := w.nodes[idx]
	for _, id := range append([]EdgeID(nil), n.outgoing...) {
		w.removeEdgeLocked(id)
	}
	for _, id := range append([]EdgeID(nil), n.incoming...) {
		w.removeEdgeLocked(id)
	}

	n.removed = true
	delete(w.index, name)

	w.logger.Debug("agent removed", "workflow", w.name, "agent", name)

	return nil
}

// removeEdgeLocked detaches an edge from both adjacency lists and clears its
// slot. Slots are never reused so committed EdgeIDs stay stable. Callers must
// hold w.mu.
func (w *Workflow) removeEdgeLocked(id EdgeID) {
	e := w.edges[id]
	w.nodes[e.from].outgoing = deleteEdgeID(w.nodes[e.from].outgoing, id)
	w.nodes[e.to].incoming = deleteEdgeID(w.nodes[e.to].incoming, id)
	w.edges[id] = nil
}

func deleteEdgeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// reaches reports whether target is reachable from start via outgoing edges.
// Callers must hold w.mu.
func (w *Workflow) reaches(start, target int) bool {
	visited := make([]bool, len(w.nodes))
	stack := []int{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		for _, eid := range w.nodes[cur].outgoing {
			stack = append(stack, w.edges[eid].to)
		}
	}

	return false
}

// Snapshot is an immutable structural view of a workflow graph.
type Snapshot struct {
	Name  string
	Nodes []string // node names in registration order
	Edges []EdgeInfo
}

// EdgeInfo describes one edge of a snapshot.
type EdgeInfo struct {
	From         string
	To           string
	HasCondition bool
	HasTransform bool
}

// Structure returns an immutable snapshot of the graph: node names in
// registration order and edges with their flow annotations.
func (w *Workflow) Structure() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Snapshot{
		Name:  w.name,
		Nodes: make([]string, 0, len(w.nodes)),
		Edges: make([]EdgeInfo, 0, len(w.edges)),
	}

	for _, n := range w.nodes {
		if n.removed {
			continue
		}
		s.Nodes = append(s.Nodes, n.agent.Name())
	}
	for _, e := range w.edges {
		if e == nil {
			continue
		}
		s.Edges = append(s.Edges, EdgeInfo{
			From:         w.nodes[e.from].agent.Name(),
			To:           w.nodes[e.to].agent.Name(),
			HasCondition: e.flow.HasCondition(),
			HasTransform: e.flow.HasTransform(),
		})
	}

	return s
}
