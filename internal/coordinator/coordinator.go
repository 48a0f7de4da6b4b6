// Package coordinator is the thin façade over plan execution: it accepts a
// candidate plan from the external decomposition step, gates it through
// graph construction and validation, hands the validated graph to the
// execution engine, and returns the aggregated report.
package coordinator

import (
	"context"
	"fmt"

	"github.com/Iron-Ham/dagrun/internal/config"
	"github.com/Iron-Ham/dagrun/internal/engine"
	"github.com/Iron-Ham/dagrun/internal/event"
	"github.com/Iron-Ham/dagrun/internal/graph"
	"github.com/Iron-Ham/dagrun/internal/logging"
	"github.com/Iron-Ham/dagrun/internal/plan"
)

// Coordinator owns the graph for the lifetime of one execution. The engine
// borrows it and never outlives the coordinator's call.
type Coordinator struct {
	cfg      *config.Config
	executor engine.Executor
	bus      *event.Bus
	logger   *logging.Logger
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithBus attaches an existing event bus so external observers can
// subscribe before any run starts.
func WithBus(bus *event.Bus) Option {
	return func(c *Coordinator) {
		c.bus = bus
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New creates a Coordinator that executes plans against the given
// executor under the given configuration.
func New(cfg *config.Config, executor engine.Executor, opts ...Option) *Coordinator {
	c := &Coordinator{
		cfg:      cfg,
		executor: executor,
		bus:      event.NewBus(),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bus returns the event bus lifecycle events are published to.
func (c *Coordinator) Bus() *event.Bus {
	return c.bus
}

// Execute validates the candidate plan and runs it to completion. A
// malformed or cyclic plan aborts before any task executes; the returned
// report then records zero attempts. Otherwise the report carries the
// terminal state of every task.
func (c *Coordinator) Execute(ctx context.Context, spec *plan.Spec) (*engine.Report, error) {
	g, err := graph.FromPlan(spec)
	if err != nil {
		return nil, fmt.Errorf("rejecting candidate plan: %w", err)
	}

	eng := engine.New(c.executor, c.cfg.EngineOptions(c.bus, c.logger))
	report, err := eng.Run(ctx, g)
	if err != nil {
		return report, fmt.Errorf("plan execution aborted: %w", err)
	}
	return report, nil
}

// Inspect validates the candidate plan without executing it and returns
// the computed layers and critical path, for dry-run style tooling.
func (c *Coordinator) Inspect(spec *plan.Spec) (*Inspection, error) {
	g, err := graph.FromPlan(spec)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	chain, cost := g.CriticalPath()
	return &Inspection{
		TaskCount:            g.Len(),
		Layers:               g.TopologicalLayers(),
		CriticalPath:         chain,
		CriticalPathEstimate: cost,
	}, nil
}

// Inspection is the result of validating a plan without running it.
type Inspection struct {
	TaskCount            int        `json:"task_count"`
	Layers               [][]string `json:"layers"`
	CriticalPath         []string   `json:"critical_path"`
	CriticalPathEstimate float64    `json:"critical_path_estimate"`
}
