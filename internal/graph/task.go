package graph

// Status represents the current state of a task within a run.
type Status string

const (
	// StatusPending indicates the task is waiting for its dependencies.
	StatusPending Status = "pending"

	// StatusReady indicates all dependencies completed and the task is
	// eligible for dispatch.
	StatusReady Status = "ready"

	// StatusRunning indicates an attempt is currently in flight.
	StatusRunning Status = "running"

	// StatusCompleted indicates the task finished successfully.
	StatusCompleted Status = "completed"

	// StatusFailed indicates the task failed and will not be retried.
	StatusFailed Status = "failed"

	// StatusSkipped indicates the task was never started because an
	// upstream dependency ended in a non-success terminal state.
	StatusSkipped Status = "skipped"

	// StatusCancelled indicates the task was stopped, or never started,
	// because the run was cancelled.
	StatusCancelled Status = "cancelled"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if this status represents a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusSkipped, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal step in
// the task state machine. The only backward edge is Running -> Pending,
// taken when a retryable failure re-queues the task for a later attempt.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusReady || next == StatusSkipped || next == StatusCancelled
	case StatusReady:
		return next == StatusRunning || next == StatusCancelled || next == StatusFailed
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed ||
			next == StatusCancelled || next == StatusPending
	default:
		// Terminal states have no outgoing transitions.
		return false
	}
}

// Task is a single unit of work in the graph.
//
// Structural fields (ID, Description, DependsOn, Priority, EstimatedCost)
// are frozen after graph validation. The remaining fields are mutable
// during execution; the engine guarantees at most one in-flight attempt
// per task, so each is written by a single goroutine at a time.
type Task struct {
	// ID uniquely identifies the task within its graph.
	ID string

	// Description is a human-readable summary of the work.
	Description string

	// DependsOn lists the IDs of tasks that must complete first.
	DependsOn []string

	// Priority is a tie-break within a ready batch; higher runs first.
	Priority int

	// EstimatedCost weights this task in critical-path computation.
	EstimatedCost float64

	// Payload carries executor-specific data (for example an argv for a
	// command executor). The graph never interprets it.
	Payload any

	// Status is the task's position in the state machine.
	Status Status

	// Attempts counts execution attempts so far.
	Attempts int

	// Output holds the executor's result payload once completed.
	Output any

	// Err holds the structured failure once the task ends failed, skipped,
	// or cancelled.
	Err *TaskError
}
