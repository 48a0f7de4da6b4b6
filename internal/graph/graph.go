package graph

import (
	"fmt"
	"sort"

	"github.com/Iron-Ham/dagrun/internal/plan"
)

// TaskGraph is the validated task dependency DAG. It owns the full set of
// tasks plus derived structure: reverse adjacency and, after Validate,
// the guarantee of acyclicity.
//
// Construction and validation are single-threaded. During execution the
// structural fields are read-only and require no locking; only per-task
// mutable fields change, serialized by the engine.
type TaskGraph struct {
	tasks map[string]*Task

	// order preserves insertion order for deterministic iteration.
	order []string

	// dependents is the reverse adjacency: dependents[id] lists the tasks
	// that directly depend on id.
	dependents map[string][]string

	validated bool
}

// Construct builds a TaskGraph from a set of tasks. It fails with a
// *MalformedGraphError when a depends_on reference does not exist, a task
// ID is duplicated, or a task depends on itself. All structural problems
// found are aggregated into the returned error.
func Construct(tasks []*Task) (*TaskGraph, error) {
	var problems []string

	byID := make(map[string]*Task, len(tasks))
	order := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			problems = append(problems, "task with empty ID")
			continue
		}
		if _, exists := byID[t.ID]; exists {
			problems = append(problems, fmt.Sprintf("duplicate task ID %q", t.ID))
			continue
		}
		byID[t.ID] = t
		order = append(order, t.ID)
	}

	dependents := make(map[string][]string, len(tasks))
	for _, id := range order {
		t := byID[id]
		for _, depID := range t.DependsOn {
			if depID == t.ID {
				problems = append(problems, fmt.Sprintf("task %q depends on itself", t.ID))
				continue
			}
			if _, ok := byID[depID]; !ok {
				problems = append(problems, fmt.Sprintf("task %q depends on unknown task %q", t.ID, depID))
				continue
			}
			dependents[depID] = append(dependents[depID], t.ID)
		}
	}

	if len(problems) > 0 {
		return nil, &MalformedGraphError{Problems: problems}
	}

	// Sort adjacency lists so traversal order is deterministic.
	for id := range dependents {
		sort.Strings(dependents[id])
	}

	for _, t := range byID {
		if t.EstimatedCost <= 0 {
			t.EstimatedCost = 1
		}
		if t.Status == "" {
			t.Status = StatusPending
		}
	}

	return &TaskGraph{
		tasks:      byID,
		order:      order,
		dependents: dependents,
	}, nil
}

// FromPlan converts an untrusted candidate plan into a TaskGraph,
// applying the same structural checks as Construct.
func FromPlan(spec *plan.Spec) (*TaskGraph, error) {
	tasks := make([]*Task, 0, len(spec.Tasks))
	for _, ts := range spec.Tasks {
		t := &Task{
			ID:            ts.ID,
			Description:   ts.Description,
			DependsOn:     append([]string(nil), ts.DependsOn...),
			Priority:      ts.Priority,
			EstimatedCost: ts.EstimatedCost,
			Status:        StatusPending,
		}
		if len(ts.Command) > 0 {
			t.Payload = append([]string(nil), ts.Command...)
		}
		tasks = append(tasks, t)
	}
	return Construct(tasks)
}

// Task returns the task with the given ID.
func (g *TaskGraph) Task(id string) (*Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Tasks returns all tasks in insertion order.
func (g *TaskGraph) Tasks() []*Task {
	out := make([]*Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Len returns the number of tasks in the graph.
func (g *TaskGraph) Len() int {
	return len(g.tasks)
}

// Validated reports whether Validate has run and passed.
func (g *TaskGraph) Validated() bool {
	return g.validated
}

// DirectDependents returns the tasks that directly depend on the given
// task, in sorted order.
func (g *TaskGraph) DirectDependents(id string) []string {
	return g.dependents[id]
}

// DependentsOf returns the transitive closure of tasks that directly or
// indirectly depend on the given task, sorted by ID. The engine uses this
// to cascade failure forward through the graph.
func (g *TaskGraph) DependentsOf(id string) ([]string, error) {
	if _, ok := g.tasks[id]; !ok {
		return nil, fmt.Errorf("task not found: %s", id)
	}

	seen := make(map[string]bool)
	queue := append([]string(nil), g.dependents[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		queue = append(queue, g.dependents[next]...)
	}

	out := make([]string, 0, len(seen))
	for depID := range seen {
		out = append(out, depID)
	}
	sort.Strings(out)
	return out, nil
}
