// Package flow defines the edge policy applied when a value propagates
// between two nodes of a workflow graph.
//
// A Flow pairs an optional gating condition with an optional value transform.
// Conditions and transforms are expressed as small capability interfaces
// rather than bare closures so that stateful implementations can control
// their own synchronization when shared across concurrent workflow runs.
package flow

// Condition gates whether an edge fires for a given upstream output.
//
// Evaluate may be called concurrently from multiple workflow runs and must
// not mutate shared state without synchronization.
type Condition interface {
	Evaluate(output string) bool
}

// ConditionFunc adapts an ordinary predicate function to the Condition interface.
type ConditionFunc func(output string) bool

// Evaluate implements Condition.
func (f ConditionFunc) Evaluate(output string) bool { return f(output) }

// Transformer rewrites the value carried across an edge before it is
// delivered to the target node.
type Transformer interface {
	Apply(output string) string
}

// TransformFunc adapts an ordinary function to the Transformer interface.
type TransformFunc func(output string) string

// Apply implements Transformer.
func (f TransformFunc) Apply(output string) string { return f(output) }

// Flow is the policy attached to a directed edge. The zero value is the
// default flow: no condition (always fires) and no transform (identity
// pass-through).
type Flow struct {
	// Condition, when non-nil, gates the edge. A false evaluation suppresses
	// the edge for this run: no value propagates via it, without affecting
	// sibling edges of the same source node.
	Condition Condition

	// Transform, when non-nil, rewrites the propagated value after the
	// condition has passed.
	Transform Transformer
}

// Default returns the identity pass-through flow.
func Default() Flow { return Flow{} }

// When returns a flow gated by the given condition.
func When(cond Condition) Flow { return Flow{Condition: cond} }

// Map returns a flow applying the given transform.
func Map(t Transformer) Flow { return Flow{Transform: t} }

// Fires reports whether the edge propagates for the given upstream output.
func (f Flow) Fires(output string) bool {
	return f.Condition == nil || f.Condition.Evaluate(output)
}

// Propagate returns the value delivered downstream. The condition must have
// been checked via Fires beforehand; Propagate applies only the transform.
func (f Flow) Propagate(output string) string {
	if f.Transform == nil {
		return output
	}
	return f.Transform.Apply(output)
}

// HasCondition reports whether the flow carries a gating condition.
func (f Flow) HasCondition() bool { return f.Condition != nil }

// HasTransform reports whether the flow carries a value transform.
func (f Flow) HasTransform() bool { return f.Transform != nil }
