// Package graph implements the workflow graph store and its concurrent
// dataflow scheduler.
//
// A Workflow is built in two phases. During the registration phase, agents
// are registered and connected with flow-labeled directed edges; acyclicity
// is enforced on every connection. The first call to Execute freezes the
// structure permanently, after which any number of runs may execute
// concurrently against the shared graph. Each run owns its execution state
// exclusively; the graph itself is never mutated by a run.
//
// Execution is dataflow-driven rather than a level-by-level topological
// sweep: a node runs as soon as every incoming edge from the reachable
// closure has either fired or been suppressed, so a narrow-but-deep branch
// may complete before a wide-but-shallow one.
package graph
