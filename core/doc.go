// Package core defines the shared contracts of the agentgraph framework.
//
// The central abstraction is the Agent interface: a named capability that
// transforms an input text into an output text. Both orchestration engines
// (the DAG workflow in package graph and the leader-directed team in package
// team) consume agents exclusively through this interface, keeping model
// invocation mechanics, prompt construction and token accounting outside the
// orchestration core.
package core
