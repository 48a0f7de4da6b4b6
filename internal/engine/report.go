package engine

import (
	"time"

	"github.com/Iron-Ham/dagrun/internal/graph"
)

// TaskResult is the terminal record of one task in a report. It answers,
// for any task: did it run, how many times, and why did it end in its
// final state.
type TaskResult struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	Status      graph.Status    `json:"status"`
	Attempts    int             `json:"attempts"`
	Output      any             `json:"output,omitempty"`
	ErrorKind   graph.ErrorKind `json:"error_kind,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Report is the aggregated result of one run. It is created when the run
// starts, finalized when it ends, and owned exclusively by that run.
type Report struct {
	RunID      string    `json:"run_id"`
	Success    bool      `json:"success"`
	TotalTasks int       `json:"total_tasks"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Cancelled  int       `json:"cancelled"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Duration is the run's total wall-clock time.
	Duration time.Duration `json:"duration_ns"`

	// CriticalPath is the maximum-weight dependency chain and
	// CriticalPathEstimate its total estimated cost; together with
	// Duration they compare the plan's lower-bound estimate to the actual
	// wall-clock time.
	CriticalPath         []string `json:"critical_path,omitempty"`
	CriticalPathEstimate float64  `json:"critical_path_estimate,omitempty"`

	// Tasks holds the terminal state of every task, in plan order.
	Tasks []TaskResult `json:"tasks"`

	// Error is set when a graph-level error (malformed or cyclic plan)
	// aborted the run before any task was attempted.
	Error string `json:"error,omitempty"`
}

// StatusCounts is a snapshot of per-status task counts, usable mid-run by
// observers.
type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Ready     int `json:"ready"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Cancelled int `json:"cancelled"`
}

// finalize fills the report's aggregate fields from the graph's terminal
// task states.
func (r *Report) finalize(g *graph.TaskGraph, finished time.Time) {
	r.FinishedAt = finished
	r.Duration = finished.Sub(r.StartedAt)

	r.Tasks = r.Tasks[:0]
	r.Completed, r.Failed, r.Skipped, r.Cancelled = 0, 0, 0, 0
	for _, t := range g.Tasks() {
		res := TaskResult{
			ID:          t.ID,
			Description: t.Description,
			Status:      t.Status,
			Attempts:    t.Attempts,
			Output:      t.Output,
		}
		if t.Err != nil {
			res.ErrorKind = t.Err.Kind
			res.Error = t.Err.Message
		}
		r.Tasks = append(r.Tasks, res)

		switch t.Status {
		case graph.StatusCompleted:
			r.Completed++
		case graph.StatusFailed:
			r.Failed++
		case graph.StatusSkipped:
			r.Skipped++
		case graph.StatusCancelled:
			r.Cancelled++
		}
	}

	// Skipped tasks count against overall success: intended work did not
	// complete.
	r.Success = r.Failed == 0 && r.Cancelled == 0 && r.Skipped == 0 &&
		r.Completed == r.TotalTasks && r.Error == ""
}
