package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/flow"
)

func TestExportDOT(t *testing.T) {
	wf, _ := buildGraph(t, "A", "B", "C")
	connect(t, wf, "A", "B", flow.Default())
	connect(t, wf, "A", "C", flow.When(flow.ConditionFunc(func(string) bool { return true })))
	connect(t, wf, "B", "C", flow.Map(flow.TransformFunc(strings.ToUpper)))

	dot := wf.ExportDOT()

	assert.True(t, strings.HasPrefix(dot, "digraph {\n"))
	assert.True(t, strings.HasSuffix(dot, "}\n"))

	assert.Contains(t, dot, `"A";`)
	assert.Contains(t, dot, `"B";`)
	assert.Contains(t, dot, `"C";`)

	assert.Contains(t, dot, `"A" -> "B";`)
	assert.Contains(t, dot, `"A" -> "C" [label="condition"];`)
	assert.Contains(t, dot, `"B" -> "C" [label="transform"];`)
}

func TestExportDOTCombinedLabel(t *testing.T) {
	wf, _ := buildGraph(t, "A", "B")
	connect(t, wf, "A", "B", flow.Flow{
		Condition: flow.ConditionFunc(func(string) bool { return true }),
		Transform: flow.TransformFunc(strings.ToUpper),
	})

	dot := wf.ExportDOT()
	assert.Contains(t, dot, `"A" -> "B" [label="condition|transform"];`)
}

func TestExportDOTEmptyGraph(t *testing.T) {
	wf := New("empty", "")

	dot := wf.ExportDOT()
	require.Equal(t, "digraph {\n}\n", dot)
}
