package coordinator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/dagrun/internal/config"
	"github.com/Iron-Ham/dagrun/internal/engine"
	"github.com/Iron-Ham/dagrun/internal/event"
	"github.com/Iron-Ham/dagrun/internal/graph"
	"github.com/Iron-Ham/dagrun/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	return cfg
}

func succeedAll() engine.Executor {
	return engine.ExecutorFunc(func(_ context.Context, task *graph.Task) engine.Outcome {
		return engine.Outcome{Success: true, Output: task.ID}
	})
}

func diamondPlan() *plan.Spec {
	return &plan.Spec{
		ID:        "diamond",
		Objective: "exercise the full pipeline",
		Tasks: []plan.TaskSpec{
			{ID: "a", EstimatedCost: 1},
			{ID: "b", DependsOn: []string{"a"}, EstimatedCost: 2},
			{ID: "c", DependsOn: []string{"a"}, EstimatedCost: 1},
			{ID: "d", DependsOn: []string{"b", "c"}, EstimatedCost: 1},
		},
	}
}

func TestExecuteRunsPlanToCompletion(t *testing.T) {
	coord := New(testConfig(), succeedAll())

	report, err := coord.Execute(context.Background(), diamondPlan())
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Success)
	assert.Equal(t, 4, report.Completed)
	assert.Equal(t, []string{"a", "b", "d"}, report.CriticalPath)
	assert.Equal(t, 4.0, report.CriticalPathEstimate)
}

func TestExecuteRejectsMalformedPlan(t *testing.T) {
	coord := New(testConfig(), succeedAll())

	spec := &plan.Spec{
		Tasks: []plan.TaskSpec{
			{ID: "a", DependsOn: []string{"ghost"}},
		},
	}

	report, err := coord.Execute(context.Background(), spec)
	require.Error(t, err)
	assert.Nil(t, report)

	var malformed *graph.MalformedGraphError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Problems[0], "ghost")
}

func TestExecuteReportsCyclicPlan(t *testing.T) {
	coord := New(testConfig(), succeedAll())

	spec := &plan.Spec{
		Tasks: []plan.TaskSpec{
			{ID: "a", DependsOn: []string{"b"}},
			{ID: "b", DependsOn: []string{"a"}},
		},
	}

	report, err := coord.Execute(context.Background(), spec)
	require.Error(t, err)

	var cyclic *graph.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, []string{"a", "b"}, cyclic.Cycle)

	// The cycle is caught at run time, so a report exists with no attempts.
	require.NotNil(t, report)
	for _, res := range report.Tasks {
		assert.Zero(t, res.Attempts)
	}
}

func TestExecutePublishesToAttachedBus(t *testing.T) {
	bus := event.NewBus()
	var mu sync.Mutex
	var completions []string
	bus.Subscribe(event.TypeTaskCompleted, func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		completions = append(completions, e.(event.TaskCompletedEvent).TaskID)
	})

	coord := New(testConfig(), succeedAll(), WithBus(bus))
	require.Same(t, bus, coord.Bus())

	_, err := coord.Execute(context.Background(), diamondPlan())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, completions, 4)
}

func TestInspectWithoutExecuting(t *testing.T) {
	executed := false
	exec := engine.ExecutorFunc(func(context.Context, *graph.Task) engine.Outcome {
		executed = true
		return engine.Outcome{Success: true}
	})
	coord := New(testConfig(), exec)

	inspection, err := coord.Inspect(diamondPlan())
	require.NoError(t, err)

	assert.False(t, executed, "inspect must not run any task")
	assert.Equal(t, 4, inspection.TaskCount)
	assert.Equal(t, [][]string{{"a"}, {"b", "c"}, {"d"}}, inspection.Layers)
	assert.Equal(t, []string{"a", "b", "d"}, inspection.CriticalPath)
	assert.Equal(t, 4.0, inspection.CriticalPathEstimate)
}

func TestInspectRejectsCycle(t *testing.T) {
	coord := New(testConfig(), succeedAll())

	spec := &plan.Spec{
		Tasks: []plan.TaskSpec{
			{ID: "x", DependsOn: []string{"y"}},
			{ID: "y", DependsOn: []string{"x"}},
		},
	}

	_, err := coord.Inspect(spec)
	var cyclic *graph.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
}
