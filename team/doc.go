// Package team implements the leader-directed dispatch workflow.
//
// A team consists of a registry of worker agents described by model metadata
// and a single leader. Execution is a strictly sequential decision loop: on
// every iteration the leader is shown the task and the accumulated transcript
// of prior worker results and decides either to dispatch a subtask to one
// worker or to finalize with an answer. The loop is bounded by a configured
// maximum iteration count. There is no concurrent worker fan-out because each
// leader decision depends on the previous worker's result.
//
// The team workflow is independent of the graph store in package graph.
package team
