// Package engine drives a validated task graph to completion: it walks the
// graph's topological layers, dispatches tasks to an external executor
// with retry and circuit-breaking applied, propagates failure forward to
// dependents, and emits lifecycle events along the way.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Iron-Ham/dagrun/internal/breaker"
	"github.com/Iron-Ham/dagrun/internal/event"
	"github.com/Iron-Ham/dagrun/internal/graph"
	"github.com/Iron-Ham/dagrun/internal/logging"
	"github.com/Iron-Ham/dagrun/internal/retry"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Mode selects how tasks within a layer are dispatched.
type Mode string

const (
	// ModeSequential executes tasks one at a time.
	ModeSequential Mode = "sequential"

	// ModeParallel executes up to MaxConcurrency tasks from a layer
	// concurrently.
	ModeParallel Mode = "parallel"
)

// DefaultMaxConcurrency bounds parallel dispatch when no limit is
// configured.
const DefaultMaxConcurrency = 4

// DefaultPerTaskTimeout is the hard deadline for a single executor call.
const DefaultPerTaskTimeout = 60 * time.Second

// Callbacks are optional caller-supplied lifecycle hooks. Each is invoked
// through the same panic-isolated path as event handlers, so a failing
// callback never aborts the run. Any or all may be nil.
type Callbacks struct {
	OnTaskStart    func(taskID string)
	OnTaskComplete func(taskID string, output any)
	OnTaskFail     func(taskID string, taskErr *graph.TaskError, willRetry bool)
	OnPlanComplete func(report *Report)
}

// Options configures an Engine.
type Options struct {
	// Mode is the dispatch mode; defaults to ModeParallel.
	Mode Mode

	// MaxConcurrency bounds concurrent tasks in parallel mode; min 1.
	MaxConcurrency int

	// FailFast aborts the remaining run on the first task failure, marking
	// all not-yet-terminal tasks cancelled. When false, failure cascades
	// as skips to dependents only.
	FailFast bool

	// Retry is the per-task retry policy.
	Retry retry.Policy

	// Breaker is the shared, plan-scoped circuit breaker. A nil breaker is
	// replaced with one using package defaults.
	Breaker *breaker.Breaker

	// PerTaskTimeout is the hard deadline for one executor call.
	PerTaskTimeout time.Duration

	// TimeoutIsPermanent classifies executor timeouts as permanent
	// (non-retryable) instead of the default transient.
	TimeoutIsPermanent bool

	// Logger receives structured run logs; nil discards them.
	Logger *logging.Logger

	// Bus receives lifecycle events; nil creates a private bus.
	Bus *event.Bus

	// Callbacks are optional lifecycle hooks.
	Callbacks Callbacks
}

// Engine executes one task graph at a time. It holds only configuration
// and per-run state; no global state is shared between engines.
type Engine struct {
	executor Executor
	opts     Options

	// mu guards per-task mutable fields and run bookkeeping. Structural
	// graph fields are frozen during a run and read without locking.
	mu        sync.Mutex
	graph     *graph.TaskGraph
	cancelRun context.CancelFunc
}

// New creates an Engine that dispatches tasks to the given executor.
func New(executor Executor, opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = ModeParallel
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = retry.Default()
	}
	if opts.Breaker == nil {
		opts.Breaker = breaker.New(breaker.DefaultWindowSize, breaker.DefaultFailureThreshold, breaker.DefaultCooldown)
	}
	if opts.PerTaskTimeout <= 0 {
		opts.PerTaskTimeout = DefaultPerTaskTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Bus == nil {
		opts.Bus = event.NewBus()
	}
	return &Engine{executor: executor, opts: opts}
}

// Bus returns the event bus this engine publishes lifecycle events to.
func (e *Engine) Bus() *event.Bus {
	return e.opts.Bus
}

// Run validates the graph and drives it to completion, returning the
// finalized report. Graph-level errors (malformed input was already
// rejected at construction; a cycle is caught here) abort the run before
// any task is attempted and are returned alongside the report.
//
// Run always returns: a non-responsive executor is forced to a timeout
// failure by the per-task deadline, and external cancellation of ctx stops
// dispatch and marks remaining tasks cancelled.
func (e *Engine) Run(ctx context.Context, g *graph.TaskGraph) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		TotalTasks: g.Len(),
		StartedAt:  time.Now(),
	}
	logger := e.opts.Logger.WithRun(report.RunID)

	if err := g.Validate(); err != nil {
		logger.Error("plan validation failed", "error", err.Error())
		report.Error = err.Error()
		report.finalize(g, time.Now())
		report.Success = false
		e.notifyPlanComplete(report)
		return report, err
	}

	layers := g.TopologicalLayers()
	report.CriticalPath, report.CriticalPathEstimate = g.CriticalPath()

	groupSizes := make([]int, len(layers))
	for i, layer := range layers {
		groupSizes[i] = len(layer)
	}
	logger.Info("starting run",
		"task_count", g.Len(),
		"layer_count", len(layers),
		"layer_sizes", groupSizes,
		"mode", string(e.opts.Mode),
		"critical_path_estimate", report.CriticalPathEstimate,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.mu.Lock()
	e.graph = g
	e.cancelRun = cancel
	e.mu.Unlock()

	for _, layer := range layers {
		ready := e.promoteLayer(g, layer)
		if len(ready) == 0 {
			continue
		}

		// Layers are hard barriers: every task here reaches a terminal
		// state (or re-queues and finishes its retries) before the next
		// layer starts.
		if e.opts.Mode == ModeSequential {
			for _, t := range ready {
				e.runTask(runCtx, g, t, logger)
			}
		} else {
			p := pool.New().WithMaxGoroutines(e.opts.MaxConcurrency)
			for _, t := range ready {
				t := t
				p.Go(func() {
					e.runTask(runCtx, g, t, logger)
				})
			}
			p.Wait()
		}
	}

	// Anything not terminal by now was never dispatched: the run was
	// cancelled or aborted by fail-fast.
	e.mu.Lock()
	for _, t := range g.Tasks() {
		if !t.Status.IsTerminal() {
			t.Status = graph.StatusCancelled
			if t.Err == nil {
				t.Err = graph.NewTaskError(graph.KindCancelled, "run aborted before task started")
			}
		}
	}
	e.mu.Unlock()

	report.finalize(g, time.Now())
	logger.Info("run finished",
		"success", report.Success,
		"completed", report.Completed,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"cancelled", report.Cancelled,
		"duration", report.Duration.String(),
	)
	e.notifyPlanComplete(report)
	return report, nil
}

// Snapshot returns per-status task counts for the current run. Safe to
// call concurrently with Run.
func (e *Engine) Snapshot() StatusCounts {
	e.mu.Lock()
	defer e.mu.Unlock()

	var counts StatusCounts
	if e.graph == nil {
		return counts
	}
	for _, t := range e.graph.Tasks() {
		counts.Total++
		switch t.Status {
		case graph.StatusPending:
			counts.Pending++
		case graph.StatusReady:
			counts.Ready++
		case graph.StatusRunning:
			counts.Running++
		case graph.StatusCompleted:
			counts.Completed++
		case graph.StatusFailed:
			counts.Failed++
		case graph.StatusSkipped:
			counts.Skipped++
		case graph.StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

// promoteLayer transitions the layer's still-pending tasks to ready and
// returns them in dispatch order. Tasks already skipped or cancelled by an
// earlier layer's cascade are left alone.
func (e *Engine) promoteLayer(g *graph.TaskGraph, layer []string) []*graph.Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	ready := make([]*graph.Task, 0, len(layer))
	for _, id := range layer {
		t, ok := g.Task(id)
		if !ok || t.Status != graph.StatusPending {
			continue
		}
		t.Status = graph.StatusReady
		ready = append(ready, t)
	}
	return ready
}

// runTask owns a single task for the duration of the run: the circuit
// gate, every execution attempt, backoff between attempts, and the final
// status. Attempts are strictly serialized; a task is never executed by
// two goroutines at once.
func (e *Engine) runTask(ctx context.Context, g *graph.TaskGraph, t *graph.Task, logger *logging.Logger) {
	taskLogger := logger.WithTask(t.ID)

	for {
		if ctx.Err() != nil {
			e.markCancelled(t)
			return
		}

		if err := e.opts.Breaker.Allow(); err != nil {
			taskLogger.Warn("task rejected by circuit breaker")
			terr := graph.WrapTaskError(graph.KindCircuitOpen, "rejected by open circuit breaker", err)
			e.mu.Lock()
			t.Status = graph.StatusFailed
			t.Err = terr
			e.mu.Unlock()
			// Not an executor completion: the sliding window is untouched
			// and the attempt counter does not move.
			e.notifyFail(t.ID, terr, t.Attempts, false)
			e.cascade(g, t)
			return
		}

		e.mu.Lock()
		t.Status = graph.StatusRunning
		t.Attempts++
		attempt := t.Attempts
		e.mu.Unlock()

		taskLogger.Debug("dispatching task", "attempt", attempt)
		e.notifyStart(t.ID, attempt)

		outcome := e.invoke(ctx, t)

		if outcome.Success {
			e.opts.Breaker.Record(true)
			e.mu.Lock()
			t.Status = graph.StatusCompleted
			t.Output = outcome.Output
			e.mu.Unlock()
			taskLogger.Info("task completed", "attempts", attempt)
			e.notifyComplete(t.ID, attempt, outcome.Output)
			return
		}

		terr := outcome.Err
		if terr == nil {
			terr = graph.NewTaskError(graph.KindTransient, "executor reported failure without detail")
		}

		if terr.Kind == graph.KindCancelled {
			taskLogger.Warn("task cancelled mid-execution")
			e.markCancelled(t)
			return
		}

		e.opts.Breaker.Record(false)

		effective := terr.Kind
		if effective == graph.KindTimeout && !e.opts.TimeoutIsPermanent {
			effective = graph.KindTransient
		}
		willRetry := ctx.Err() == nil && e.opts.Retry.ShouldRetry(effective, attempt)

		taskLogger.Warn("task attempt failed",
			"attempt", attempt,
			"kind", terr.Kind.String(),
			"error", terr.Message,
			"will_retry", willRetry,
		)
		e.notifyFail(t.ID, terr, attempt, willRetry)

		if !willRetry {
			e.mu.Lock()
			t.Status = graph.StatusFailed
			t.Err = terr
			e.mu.Unlock()
			e.cascade(g, t)
			return
		}

		// Re-queue for another attempt after backoff. The delay is always
		// awaited before redispatch; attempts never overlap.
		e.mu.Lock()
		t.Status = graph.StatusPending
		e.mu.Unlock()

		delay := e.opts.Retry.NextDelay(attempt)
		taskLogger.Debug("backing off before retry", "delay", delay.String())
		select {
		case <-ctx.Done():
			e.markCancelled(t)
			return
		case <-time.After(delay):
		}

		e.mu.Lock()
		t.Status = graph.StatusReady
		e.mu.Unlock()
	}
}

// invoke runs a single executor attempt under the per-task deadline,
// converting panics to transient failures so a misbehaving executor never
// crashes the engine. If the executor does not return in time, the attempt
// is abandoned and reported as a timeout; the abandoned goroutine is left
// to drain into a buffered channel.
func (e *Engine) invoke(ctx context.Context, t *graph.Task) Outcome {
	attemptCtx, cancel := context.WithTimeout(ctx, e.opts.PerTaskTimeout)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		var catcher panics.Catcher
		var out Outcome
		catcher.Try(func() {
			out = e.executor.Execute(attemptCtx, t)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			out = Outcome{
				Err: graph.WrapTaskError(graph.KindTransient, "executor panicked", recovered.AsError()),
			}
		}
		done <- out
	}()

	select {
	case out := <-done:
		if !out.Success && out.Err == nil {
			out.Err = graph.NewTaskError(graph.KindTransient, "executor reported failure without detail")
		}
		return out
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return Outcome{Err: graph.WrapTaskError(graph.KindCancelled, "run cancelled", ctx.Err())}
		}
		msg := fmt.Sprintf("executor did not return within %s", e.opts.PerTaskTimeout)
		return Outcome{Err: graph.WrapTaskError(graph.KindTimeout, msg, attemptCtx.Err())}
	}
}

// cascade propagates a terminal failure forward. In fail-fast mode the
// whole run is aborted; otherwise every transitive dependent that has not
// started is skipped immediately, before its layer is reached.
func (e *Engine) cascade(g *graph.TaskGraph, failed *graph.Task) {
	if e.opts.FailFast {
		e.mu.Lock()
		cancel := e.cancelRun
		e.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}

	dependents, err := g.DependentsOf(failed.ID)
	if err != nil {
		return
	}

	e.mu.Lock()
	var skipped []string
	for _, id := range dependents {
		t, ok := g.Task(id)
		if !ok {
			continue
		}
		if t.Status == graph.StatusPending || t.Status == graph.StatusReady {
			t.Status = graph.StatusSkipped
			t.Err = graph.NewTaskError(graph.KindDependencyFailed,
				fmt.Sprintf("dependency %s did not complete", failed.ID))
			skipped = append(skipped, id)
		}
	}
	e.mu.Unlock()

	for _, id := range skipped {
		e.opts.Bus.Publish(event.NewTaskSkippedEvent(id, failed.ID))
	}
}

// markCancelled moves a non-terminal task to cancelled.
func (e *Engine) markCancelled(t *graph.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.Status.IsTerminal() {
		return
	}
	t.Status = graph.StatusCancelled
	if t.Err == nil {
		t.Err = graph.NewTaskError(graph.KindCancelled, "run cancelled")
	}
}

// notifyStart publishes the task-started event and invokes the matching
// callback.
func (e *Engine) notifyStart(taskID string, attempt int) {
	e.opts.Bus.Publish(event.NewTaskStartedEvent(taskID, attempt))
	if cb := e.opts.Callbacks.OnTaskStart; cb != nil {
		safeCallback(func() { cb(taskID) })
	}
}

func (e *Engine) notifyComplete(taskID string, attempts int, output any) {
	e.opts.Bus.Publish(event.NewTaskCompletedEvent(taskID, attempts, output))
	if cb := e.opts.Callbacks.OnTaskComplete; cb != nil {
		safeCallback(func() { cb(taskID, output) })
	}
}

func (e *Engine) notifyFail(taskID string, terr *graph.TaskError, attempt int, willRetry bool) {
	e.opts.Bus.Publish(event.NewTaskFailedEvent(taskID, terr.Kind.String(), terr.Message, attempt, willRetry))
	if cb := e.opts.Callbacks.OnTaskFail; cb != nil {
		safeCallback(func() { cb(taskID, terr, willRetry) })
	}
}

func (e *Engine) notifyPlanComplete(report *Report) {
	e.opts.Bus.Publish(event.NewPlanCompletedEvent(
		report.RunID, report.Success,
		report.Completed, report.Failed, report.Skipped, report.Cancelled,
	))
	if cb := e.opts.Callbacks.OnPlanComplete; cb != nil {
		safeCallback(func() { cb(report) })
	}
}

// safeCallback invokes a caller-supplied hook, swallowing panics so a
// broken observer cannot abort the run.
func safeCallback(fn func()) {
	defer func() {
		_ = recover()
	}()
	fn()
}
