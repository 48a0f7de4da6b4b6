package graph

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a task-level failure for retry and reporting
// decisions.
type ErrorKind string

const (
	// KindTransient marks a retryable failure, such as a momentarily
	// unavailable downstream resource.
	KindTransient ErrorKind = "transient"

	// KindPermanent marks a failure that retrying cannot fix, such as
	// invalid input rejected by the executor.
	KindPermanent ErrorKind = "permanent"

	// KindTimeout marks an executor that did not return within the
	// per-task timeout.
	KindTimeout ErrorKind = "timeout"

	// KindDependencyFailed is assigned by the engine to tasks skipped
	// because an upstream dependency did not complete.
	KindDependencyFailed ErrorKind = "dependency_failed"

	// KindCircuitOpen is assigned when the circuit breaker rejected the
	// task before its executor was ever invoked.
	KindCircuitOpen ErrorKind = "circuit_open"

	// KindCancelled is assigned when the run's cancellation signal stopped
	// the task.
	KindCancelled ErrorKind = "cancelled"
)

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	return string(k)
}

// TaskError is a structured task-level failure.
type TaskError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *TaskError) Unwrap() error {
	return e.Err
}

// NewTaskError creates a TaskError with the given kind and message.
func NewTaskError(kind ErrorKind, message string) *TaskError {
	return &TaskError{Kind: kind, Message: message}
}

// WrapTaskError creates a TaskError wrapping an underlying error.
func WrapTaskError(kind ErrorKind, message string, err error) *TaskError {
	return &TaskError{Kind: kind, Message: message, Err: err}
}

// MalformedGraphError reports structural problems found while constructing
// a graph: unknown dependency references, duplicate task IDs, or
// self-dependencies. All problems found are aggregated so the caller can
// surface every issue at once rather than fixing them one at a time.
type MalformedGraphError struct {
	Problems []string
}

// Error implements the error interface.
func (e *MalformedGraphError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "malformed graph"
	case 1:
		return "malformed graph: " + e.Problems[0]
	}
	return fmt.Sprintf("malformed graph (%d problems):\n  %s",
		len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// CyclicDependencyError reports a dependency cycle. Cycle holds the task
// IDs on the cycle in dependency order; the last element depends on the
// first.
type CyclicDependencyError struct {
	Cycle []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return "dependency cycle detected: " + strings.Join(e.Cycle, " -> ")
}
