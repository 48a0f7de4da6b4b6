package graph

import (
	"strings"
	"testing"
)

func TestCriticalPath(t *testing.T) {
	tests := []struct {
		name  string
		tasks []*Task
		path  string
		cost  float64
	}{
		{
			name:  "empty graph",
			tasks: nil,
			path:  "",
			cost:  0,
		},
		{
			name: "single task",
			tasks: []*Task{
				{ID: "a", EstimatedCost: 2.5},
			},
			path: "a",
			cost: 2.5,
		},
		{
			name: "heavier branch wins",
			tasks: []*Task{
				{ID: "a", EstimatedCost: 1},
				{ID: "b", EstimatedCost: 1, DependsOn: []string{"a"}},
				{ID: "c", EstimatedCost: 5, DependsOn: []string{"a"}},
				{ID: "d", EstimatedCost: 1, DependsOn: []string{"b", "c"}},
			},
			path: "a -> c -> d",
			cost: 7,
		},
		{
			name: "longer chain beats heavy single node",
			tasks: []*Task{
				{ID: "heavy", EstimatedCost: 3},
				{ID: "a", EstimatedCost: 2},
				{ID: "b", EstimatedCost: 2, DependsOn: []string{"a"}},
			},
			path: "a -> b",
			cost: 4,
		},
		{
			name: "equal weight ties break lexicographically",
			tasks: []*Task{
				{ID: "z", EstimatedCost: 2},
				{ID: "a", EstimatedCost: 2},
			},
			path: "a",
			cost: 2,
		},
		{
			name: "default cost is one",
			tasks: []*Task{
				{ID: "a"},
				{ID: "b", DependsOn: []string{"a"}},
				{ID: "c", DependsOn: []string{"b"}},
			},
			path: "a -> b -> c",
			cost: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustConstruct(t, tt.tasks)
			chain, cost := g.CriticalPath()
			if got := strings.Join(chain, " -> "); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}
			if cost != tt.cost {
				t.Errorf("cost = %v, want %v", cost, tt.cost)
			}
		})
	}
}

func TestCriticalPathStableAcrossCalls(t *testing.T) {
	g := mustConstruct(t, []*Task{
		{ID: "a", EstimatedCost: 1},
		{ID: "b", EstimatedCost: 2, DependsOn: []string{"a"}},
		{ID: "c", EstimatedCost: 2, DependsOn: []string{"a"}},
	})

	first, firstCost := g.CriticalPath()
	for i := 0; i < 10; i++ {
		chain, cost := g.CriticalPath()
		if strings.Join(chain, ",") != strings.Join(first, ",") || cost != firstCost {
			t.Fatalf("critical path not deterministic: %v (%v) vs %v (%v)",
				chain, cost, first, firstCost)
		}
	}
}
