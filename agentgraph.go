// Package agentgraph provides a high-level façade over the two workflow
// styles in this module: directed acyclic graphs of agents executed as a
// concurrent dataflow (package graph) and leader-directed teams executed as a
// sequential dispatch loop (package team). Most applications interact with
// this package by:
//  1. Creating a workflow via NewDAG() or NewTeam()
//  2. Registering agents and (for graphs) connecting them with edges
//  3. Calling Execute with a context and the initial input
//
// The façade only forwards shared options; the workflow types themselves
// carry the full API. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger.
package agentgraph

import (
	"github.com/hupe1980/agentgraph/graph"
	"github.com/hupe1980/agentgraph/logging"
	"github.com/hupe1980/agentgraph/team"
)

// Options configures workflows created through the façade.
type Options struct {
	// MaxConcurrentInvocations limits the number of agents a graph run may
	// execute simultaneously. Set to 0 for unlimited (not recommended).
	MaxConcurrentInvocations int

	// MaxDispatchIterations bounds a team's leader decision loop.
	MaxDispatchIterations int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// NewDAG creates a graph workflow with the shared option set applied.
func NewDAG(name, description string, optFns ...func(o *Options)) *graph.Workflow {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return graph.New(name, description, func(o *graph.Options) {
		o.MaxConcurrentInvocations = opts.MaxConcurrentInvocations
		o.Logger = opts.Logger
	})
}

// NewTeam creates a team workflow with the shared option set applied.
func NewTeam(name, description string, optFns ...func(o *Options)) *team.Workflow {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return team.New(name, description, func(o *team.Options) {
		o.MaxIterations = opts.MaxDispatchIterations
		o.Logger = opts.Logger
	})
}

func defaultOptions() Options {
	return Options{
		MaxConcurrentInvocations: graph.DefaultMaxConcurrentInvocations,
		MaxDispatchIterations:    team.DefaultMaxIterations,
		Logger:                   logging.NoOpLogger{},
	}
}
