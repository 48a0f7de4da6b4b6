// Package event defines the lifecycle events emitted during plan
// execution and a synchronous pub-sub bus for delivering them. Events
// decouple the engine from its observers: a progress printer, a logger, or
// caller-supplied callbacks can all subscribe without the engine depending
// on any of them.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.started", "plan.completed").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeTaskStarted   = "task.started"
	TypeTaskCompleted = "task.completed"
	TypeTaskFailed    = "task.failed"
	TypeTaskSkipped   = "task.skipped"
	TypePlanCompleted = "plan.completed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// TaskStartedEvent is emitted when an execution attempt for a task begins.
type TaskStartedEvent struct {
	baseEvent
	TaskID  string // Task being attempted
	Attempt int    // 1-based attempt number
}

// NewTaskStartedEvent creates a TaskStartedEvent.
func NewTaskStartedEvent(taskID string, attempt int) TaskStartedEvent {
	return TaskStartedEvent{
		baseEvent: newBaseEvent(TypeTaskStarted),
		TaskID:    taskID,
		Attempt:   attempt,
	}
}

// TaskCompletedEvent is emitted when a task finishes successfully.
type TaskCompletedEvent struct {
	baseEvent
	TaskID   string // Completed task
	Attempts int    // Total attempts used
	Output   any    // Opaque executor result
}

// NewTaskCompletedEvent creates a TaskCompletedEvent.
func NewTaskCompletedEvent(taskID string, attempts int, output any) TaskCompletedEvent {
	return TaskCompletedEvent{
		baseEvent: newBaseEvent(TypeTaskCompleted),
		TaskID:    taskID,
		Attempts:  attempts,
		Output:    output,
	}
}

// TaskFailedEvent is emitted when an execution attempt fails. WillRetry
// distinguishes a failure that re-queues the task from a terminal one.
type TaskFailedEvent struct {
	baseEvent
	TaskID    string // Failed task
	Kind      string // Error kind classification
	Message   string // Failure description
	Attempt   int    // Attempt number that failed
	WillRetry bool   // True if another attempt will be made
}

// NewTaskFailedEvent creates a TaskFailedEvent.
func NewTaskFailedEvent(taskID, kind, message string, attempt int, willRetry bool) TaskFailedEvent {
	return TaskFailedEvent{
		baseEvent: newBaseEvent(TypeTaskFailed),
		TaskID:    taskID,
		Kind:      kind,
		Message:   message,
		Attempt:   attempt,
		WillRetry: willRetry,
	}
}

// TaskSkippedEvent is emitted when a task is skipped because an upstream
// dependency ended in a non-success terminal state.
type TaskSkippedEvent struct {
	baseEvent
	TaskID string // Skipped task
	Cause  string // ID of the upstream task that failed
}

// NewTaskSkippedEvent creates a TaskSkippedEvent.
func NewTaskSkippedEvent(taskID, cause string) TaskSkippedEvent {
	return TaskSkippedEvent{
		baseEvent: newBaseEvent(TypeTaskSkipped),
		TaskID:    taskID,
		Cause:     cause,
	}
}

// PlanCompletedEvent is emitted once per run after every task has reached
// a terminal state (or validation aborted the run).
type PlanCompletedEvent struct {
	baseEvent
	RunID     string // Run that completed
	Success   bool   // True iff no task ended failed, skipped, or cancelled
	Completed int    // Count of completed tasks
	Failed    int    // Count of failed tasks
	Skipped   int    // Count of skipped tasks
	Cancelled int    // Count of cancelled tasks
}

// NewPlanCompletedEvent creates a PlanCompletedEvent.
func NewPlanCompletedEvent(runID string, success bool, completed, failed, skipped, cancelled int) PlanCompletedEvent {
	return PlanCompletedEvent{
		baseEvent: newBaseEvent(TypePlanCompleted),
		RunID:     runID,
		Success:   success,
		Completed: completed,
		Failed:    failed,
		Skipped:   skipped,
		Cancelled: cancelled,
	}
}
