package graph

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentgraph/flow"
)

func TestExecuteRequiresStartAgents(t *testing.T) {
	wf, _ := buildGraph(t, "A")

	_, err := wf.Execute(context.Background(), nil, "in")
	assert.ErrorIs(t, err, ErrNoStartAgents)

	_, err = wf.Execute(context.Background(), []string{"Missing"}, "in")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestExecuteLinearChain(t *testing.T) {
	wf, agents := buildGraph(t, "A", "B", "C")
	connect(t, wf, "A", "B", flow.Default())
	connect(t, wf, "B", "C", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.Failures)
	assert.Equal(t, map[string]string{"C": "C(B(A(in)))"}, result.Outputs)

	for _, a := range agents {
		assert.Equal(t, 1, a.callCount(), "agent %s", a.Name())
	}
}

func TestExecuteSingleNodeGraph(t *testing.T) {
	wf, _ := buildGraph(t, "A")

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"A": "A(in)"}, result.Outputs)
}

func TestExecuteStartNodesReceiveInitialInputUnmerged(t *testing.T) {
	wf, _ := buildGraph(t, "A", "B")
	connect(t, wf, "A", "B", flow.Default())

	// Starting from both A and B: B is also a start node, so it must run with
	// the initial input rather than wait to merge A's output.
	result, err := wf.Execute(waitCtx(t), []string{"A", "B"}, "in")
	require.NoError(t, err)

	assert.Equal(t, "B(in)", result.Outputs["B"])
}

func TestExecuteUnreachableNodesNeverRun(t *testing.T) {
	wf, agents := buildGraph(t, "A", "B", "X", "Y")
	connect(t, wf, "A", "B", flow.Default())
	connect(t, wf, "X", "Y", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"B": "B(A(in))"}, result.Outputs)
	assert.Zero(t, agents["X"].callCount())
	assert.Zero(t, agents["Y"].callCount())
}

func TestExecuteDuplicateStartNamesRunOnce(t *testing.T) {
	wf, agents := buildGraph(t, "A")

	_, err := wf.Execute(waitCtx(t), []string{"A", "A", "A"}, "in")
	require.NoError(t, err)

	assert.Equal(t, 1, agents["A"].callCount())
}

func TestExecuteConditionSuppressesBranch(t *testing.T) {
	wf, agents := buildGraph(t, "A", "B", "C")
	connect(t, wf, "A", "B", flow.When(flow.ConditionFunc(func(output string) bool {
		return strings.Contains(output, "never")
	})))
	connect(t, wf, "A", "C", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	// The suppressed target is not invoked at all and contributes no output.
	assert.Zero(t, agents["B"].callCount())
	assert.Equal(t, map[string]string{"C": "C(A(in))"}, result.Outputs)
}

func TestExecuteConditionLengthGate(t *testing.T) {
	longOutput := strings.Repeat("x", 150)

	run := func(t *testing.T, output string) (*Result, *stubAgent, error) {
		wf := New("gate", "")
		a := newConstAgent("A", output)
		b := newEchoAgent("B")
		c := newEchoAgent("C")
		require.NoError(t, wf.Register(a))
		require.NoError(t, wf.Register(b))
		require.NoError(t, wf.Register(c))
		connect(t, wf, "A", "B", flow.When(flow.ConditionFunc(func(out string) bool {
			return len(out) > 100
		})))
		connect(t, wf, "A", "C", flow.Default())

		result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
		return result, b, err
	}

	t.Run("fires above threshold", func(t *testing.T) {
		result, b, err := run(t, longOutput)
		require.NoError(t, err)
		assert.Equal(t, 1, b.callCount())
		assert.Equal(t, "B("+longOutput+")", result.Outputs["B"])
	})

	t.Run("suppressed below threshold", func(t *testing.T) {
		result, b, err := run(t, "short")
		require.NoError(t, err)
		assert.Zero(t, b.callCount())
		assert.NotContains(t, result.Outputs, "B")
	})
}

func TestExecuteTransformAppliesExactly(t *testing.T) {
	wf, _ := buildGraph(t, "A", "B")
	connect(t, wf, "A", "B", flow.Map(flow.TransformFunc(strings.ToUpper)))

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	// Linear path: the transformed value reaches B byte-for-byte, no merge
	// decoration.
	assert.Equal(t, "B(A(IN))", result.Outputs["B"])
}

func TestExecuteJoinMergesInRegistrationOrder(t *testing.T) {
	wf := New("join", "")
	require.NoError(t, wf.Register(newConstAgent("A", "A-output")))
	require.NoError(t, wf.Register(newConstAgent("B", "B-output")))
	d := newEchoAgent("D")
	require.NoError(t, wf.Register(d))
	connect(t, wf, "A", "D", flow.Default())
	connect(t, wf, "B", "D", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A", "B"}, "in")
	require.NoError(t, err)

	want := "D(A-output" + MergeDelimiter + "B-output)"
	assert.Equal(t, want, result.Outputs["D"])
	assert.Equal(t, 1, d.callCount())
}

func TestExecuteMergeOrderIsDeterministicUnderRacyCompletion(t *testing.T) {
	// Predecessors finish in random order across iterations; the join input
	// must always follow registration order regardless.
	for i := 0; i < 25; i++ {
		wf := New("racy", "")
		names := []string{"P1", "P2", "P3", "P4"}
		for _, name := range names {
			name := name
			require.NoError(t, wf.Register(newStubAgent(name, func(context.Context, string) (string, error) {
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
				return name + "-out", nil
			})))
		}
		join := newEchoAgent("J")
		require.NoError(t, wf.Register(join))
		for _, name := range names {
			connect(t, wf, name, "J", flow.Default())
		}

		result, err := wf.Execute(waitCtx(t), names, "in")
		require.NoError(t, err)

		want := "J(" + strings.Join([]string{"P1-out", "P2-out", "P3-out", "P4-out"}, MergeDelimiter) + ")"
		assert.Equal(t, want, result.Outputs["J"])
	}
}

func TestExecuteJoinWaitsForAllFiredInputs(t *testing.T) {
	wf := New("diamond", "")
	require.NoError(t, wf.Register(newConstAgent("A", "seed")))

	var mu sync.Mutex
	var joinInputs []string

	require.NoError(t, wf.Register(newStubAgent("B", func(_ context.Context, input string) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "slow:" + input, nil
	})))
	require.NoError(t, wf.Register(newStubAgent("C", func(_ context.Context, input string) (string, error) {
		return "fast:" + input, nil
	})))
	require.NoError(t, wf.Register(newStubAgent("D", func(_ context.Context, input string) (string, error) {
		mu.Lock()
		joinInputs = append(joinInputs, input)
		mu.Unlock()
		return "done", nil
	})))

	connect(t, wf, "A", "B", flow.Default())
	connect(t, wf, "A", "C", flow.Default())
	connect(t, wf, "B", "D", flow.Default())
	connect(t, wf, "C", "D", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	// D ran exactly once, with both inputs merged in registration order.
	require.Len(t, joinInputs, 1)
	assert.Equal(t, "slow:seed"+MergeDelimiter+"fast:seed", joinInputs[0])
	assert.Equal(t, map[string]string{"D": "done"}, result.Outputs)
}

func TestExecuteJoinWithPartiallySuppressedInputs(t *testing.T) {
	wf := New("partial-join", "")
	require.NoError(t, wf.Register(newConstAgent("A", "keep")))
	require.NoError(t, wf.Register(newConstAgent("B", "drop")))
	d := newEchoAgent("D")
	require.NoError(t, wf.Register(d))
	connect(t, wf, "A", "D", flow.Default())
	connect(t, wf, "B", "D", flow.When(flow.ConditionFunc(func(output string) bool {
		return output != "drop"
	})))

	result, err := wf.Execute(waitCtx(t), []string{"A", "B"}, "in")
	require.NoError(t, err)

	// Only A's edge fired; the single input passes through unmerged.
	assert.Equal(t, "D(keep)", result.Outputs["D"])
}

func TestExecuteSkipPropagatesDownstream(t *testing.T) {
	wf, agents := buildGraph(t, "A", "B", "C", "D")
	connect(t, wf, "A", "B", flow.When(flow.ConditionFunc(func(string) bool { return false })))
	connect(t, wf, "B", "C", flow.Default())
	connect(t, wf, "C", "D", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")

	// Everything downstream of the suppressed edge is skipped; the run yields
	// no terminal output and reports ErrEmptyResult with a usable partial.
	assert.ErrorIs(t, err, ErrEmptyResult)
	require.NotNil(t, result)
	assert.Empty(t, result.Outputs)
	assert.Empty(t, result.Failures)

	assert.Equal(t, 1, agents["A"].callCount())
	assert.Zero(t, agents["B"].callCount())
	assert.Zero(t, agents["C"].callCount())
	assert.Zero(t, agents["D"].callCount())
}

func TestExecuteNodeFailureKeepsIndependentBranches(t *testing.T) {
	wf := New("failing", "")
	require.NoError(t, wf.Register(newConstAgent("A", "seed")))

	bErr := errors.New("b exploded")
	require.NoError(t, wf.Register(newStubAgent("B", func(context.Context, string) (string, error) {
		return "", bErr
	})))
	require.NoError(t, wf.Register(newEchoAgent("C")))
	require.NoError(t, wf.Register(newEchoAgent("D")))

	connect(t, wf, "A", "B", flow.Default())
	connect(t, wf, "A", "C", flow.Default())
	connect(t, wf, "B", "D", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")
	require.NoError(t, err)

	// The healthy branch produced its terminal output.
	assert.Equal(t, "C(seed)", result.Outputs["C"])
	// The failed node's downstream never ran but is recorded as a failure.
	assert.NotContains(t, result.Outputs, "D")
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "B", result.Failures[0].Agent)
	assert.ErrorIs(t, result.Failures[0], bErr)
}

func TestExecuteAllBranchesFailReturnsEmptyResultWithFailures(t *testing.T) {
	wf := New("all-fail", "")
	require.NoError(t, wf.Register(newStubAgent("A", func(context.Context, string) (string, error) {
		return "", errors.New("a failed")
	})))
	require.NoError(t, wf.Register(newEchoAgent("B")))
	connect(t, wf, "A", "B", flow.Default())

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")

	assert.ErrorIs(t, err, ErrEmptyResult)
	require.NotNil(t, result)
	assert.Empty(t, result.Outputs)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "A", result.Failures[0].Agent)
}

func TestExecuteTerminalNodesAreLeaves(t *testing.T) {
	// B has a suppressed outgoing edge but is NOT terminal: only nodes without
	// outgoing edges contribute outputs.
	wf, _ := buildGraph(t, "A", "B", "C")
	connect(t, wf, "A", "B", flow.Default())
	connect(t, wf, "B", "C", flow.When(flow.ConditionFunc(func(string) bool { return false })))

	result, err := wf.Execute(waitCtx(t), []string{"A"}, "in")

	assert.ErrorIs(t, err, ErrEmptyResult)
	assert.Empty(t, result.Outputs)
}

func TestExecuteConcurrentRunsAreIsolated(t *testing.T) {
	wf, _ := buildGraph(t, "A", "B")
	connect(t, wf, "A", "B", flow.Default())

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)

	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = wf.Execute(waitCtx(t), []string{"A"}, "in")
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "B(A(in))", results[i].Outputs["B"])
		assert.False(t, seen[results[i].RunID], "run IDs must be unique")
		seen[results[i].RunID] = true
	}
}

func TestExecuteHonorsConcurrencyLimit(t *testing.T) {
	wf := New("bounded", "", func(o *Options) {
		o.MaxConcurrentInvocations = 2
	})

	var mu sync.Mutex
	var inFlight, peak int

	fanIn := newEchoAgent("Z")
	require.NoError(t, wf.Register(newConstAgent("S", "seed")))
	for _, name := range []string{"W1", "W2", "W3", "W4", "W5"} {
		require.NoError(t, wf.Register(newStubAgent(name, func(context.Context, string) (string, error) {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
			return "w", nil
		})))
		connect(t, wf, "S", name, flow.Default())
	}
	require.NoError(t, wf.Register(fanIn))
	for _, name := range []string{"W1", "W2", "W3", "W4", "W5"} {
		connect(t, wf, name, "Z", flow.Default())
	}

	_, err := wf.Execute(waitCtx(t), []string{"S"}, "in")
	require.NoError(t, err)

	// The semaphore admits the seed plus workers; the worker plateau must
	// never exceed the configured bound.
	assert.LessOrEqual(t, peak, 2)
}

func TestExecuteCancellationStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	wf := New("cancel", "")
	require.NoError(t, wf.Register(newStubAgent("A", func(context.Context, string) (string, error) {
		cancel()
		<-release
		return "a-out", nil
	})))
	b := newEchoAgent("B")
	require.NoError(t, wf.Register(b))
	connect(t, wf, "A", "B", flow.Default())

	done := make(chan struct{})
	var result *Result
	var err error
	go func() {
		result, err = wf.Execute(ctx, []string{"A"}, "in")
		close(done)
	}()

	// Let A observe the cancellation, then allow it to finish.
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-done

	// A ran to completion despite the cancel, but B was never scheduled, so
	// the run has no terminal output.
	assert.ErrorIs(t, err, ErrEmptyResult)
	require.NotNil(t, result)
	assert.Empty(t, result.Outputs)
	assert.Zero(t, b.callCount())
}
