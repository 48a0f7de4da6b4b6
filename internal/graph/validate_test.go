package graph

import (
	"errors"
	"strings"
	"testing"
)

func mustConstruct(t *testing.T, tasks []*Task) *TaskGraph {
	t.Helper()
	g, err := Construct(tasks)
	if err != nil {
		t.Fatalf("unexpected construct error: %v", err)
	}
	return g
}

func TestValidateAcceptsDAG(t *testing.T) {
	g := mustConstruct(t, []*Task{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a", "b"}},
	})

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Validated() {
		t.Error("expected graph to be marked validated")
	}
}

func TestValidateReportsExactCycle(t *testing.T) {
	tests := []struct {
		name  string
		tasks []*Task
		cycle string
	}{
		{
			name: "two node cycle",
			tasks: []*Task{
				{ID: "a", DependsOn: []string{"b"}},
				{ID: "b", DependsOn: []string{"a"}},
			},
			cycle: "a -> b",
		},
		{
			name: "three node cycle",
			tasks: []*Task{
				{ID: "a", DependsOn: []string{"c"}},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"b"}},
			},
			cycle: "a -> c -> b",
		},
		{
			name: "cycle behind valid prefix",
			tasks: []*Task{
				{ID: "root"},
				{ID: "x", DependsOn: []string{"root", "y"}},
				{ID: "y", DependsOn: []string{"x"}},
			},
			cycle: "x -> y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustConstruct(t, tt.tasks)
			err := g.Validate()
			if err == nil {
				t.Fatal("expected cycle error, got nil")
			}
			var cyclic *CyclicDependencyError
			if !errors.As(err, &cyclic) {
				t.Fatalf("expected *CyclicDependencyError, got %T", err)
			}
			if got := strings.Join(cyclic.Cycle, " -> "); got != tt.cycle {
				t.Errorf("cycle = %q, want %q", got, tt.cycle)
			}
			if g.Validated() {
				t.Error("cyclic graph must not be marked validated")
			}
		})
	}
}

func TestValidateErrorMessage(t *testing.T) {
	g := mustConstruct(t, []*Task{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	})

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	want := "dependency cycle detected: a -> b"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}
