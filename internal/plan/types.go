// Package plan defines the candidate plan format produced by an external
// decomposition step (a human, a rule engine, or a planning agent).
//
// A plan is untrusted input: it names tasks and declares dependencies, but
// nothing here is verified beyond syntax. Structural validation (unknown
// dependencies, duplicates, cycles) happens when the plan is handed to the
// graph package.
package plan

// TaskSpec describes a single proposed unit of work.
type TaskSpec struct {
	// ID uniquely identifies the task within the plan.
	ID string `yaml:"id" json:"id"`

	// Description is a human-readable summary of the work.
	Description string `yaml:"description" json:"description"`

	// DependsOn lists the IDs of tasks that must complete before this one
	// may start.
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`

	// Priority is a scheduling hint. Higher-priority tasks are dispatched
	// first when concurrency is constrained. It never overrides dependency
	// order.
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`

	// EstimatedCost is the expected relative duration of the task, used for
	// critical-path estimation. Zero means "use the default of 1".
	EstimatedCost float64 `yaml:"estimated_cost,omitempty" json:"estimated_cost,omitempty"`

	// Command is an optional argv to execute for this task when running via
	// the CLI's command executor. Tasks without a command are treated as
	// no-ops by that executor.
	Command []string `yaml:"command,omitempty" json:"command,omitempty"`
}

// Spec is a complete candidate plan: an objective decomposed into tasks.
type Spec struct {
	// ID identifies the plan. Optional; a run ID is assigned at execution
	// time regardless.
	ID string `yaml:"id,omitempty" json:"id,omitempty"`

	// Objective is the high-level goal this plan decomposes.
	Objective string `yaml:"objective,omitempty" json:"objective,omitempty"`

	// Tasks are the proposed units of work.
	Tasks []TaskSpec `yaml:"tasks" json:"tasks"`
}
