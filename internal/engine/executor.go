package engine

import (
	"context"

	"github.com/Iron-Ham/dagrun/internal/graph"
)

// Outcome is the result of one executor invocation.
type Outcome struct {
	// Success indicates the task finished successfully.
	Success bool

	// Output is the opaque result payload on success.
	Output any

	// Err is the structured failure on an unsuccessful outcome. A nil Err
	// on failure is normalized to a transient error by the engine.
	Err *graph.TaskError
}

// Executor executes a single task and reports its outcome. Implementations
// are external collaborators: an agent session, an HTTP call, a shell
// command. They must honor context cancellation and must not leave
// unrecoverable shared state if abandoned after a timeout.
type Executor interface {
	Execute(ctx context.Context, task *graph.Task) Outcome
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task *graph.Task) Outcome

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, task *graph.Task) Outcome {
	return f(ctx, task)
}
