package graph

import (
	"fmt"
	"strings"
)

// ExportDOT renders the graph structure in Graphviz DOT format. The output
// is a pure projection of the structural snapshot: edges carrying a condition
// and/or transform are annotated with a label, default edges are unlabeled.
// It has no effect on execution.
func (w *Workflow) ExportDOT() string {
	s := w.Structure()

	var b strings.Builder
	b.WriteString("digraph {\n")

	for _, name := range s.Nodes {
		fmt.Fprintf(&b, "    %q;\n", name)
	}

	for _, e := range s.Edges {
		label := edgeLabel(e)
		if label == "" {
			fmt.Fprintf(&b, "    %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&b, "    %q -> %q [label=%q];\n", e.From, e.To, label)
		}
	}

	b.WriteString("}\n")

	return b.String()
}

func edgeLabel(e EdgeInfo) string {
	var flags []string
	if e.HasCondition {
		flags = append(flags, "condition")
	}
	if e.HasTransform {
		flags = append(flags, "transform")
	}
	return strings.Join(flags, "|")
}
