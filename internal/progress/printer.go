// Package progress renders run lifecycle events as styled console output.
// The printer is a plain event-bus observer: the engine neither knows about
// it nor depends on it being installed or fast.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/Iron-Ham/dagrun/internal/event"
	"github.com/charmbracelet/lipgloss"
)

var (
	startedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	retryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	skippedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	summaryStyle   = lipgloss.NewStyle().Bold(true)
)

// Printer writes one styled line per lifecycle event.
type Printer struct {
	mu sync.Mutex
	w  io.Writer

	subIDs []string
	bus    *event.Bus
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Attach subscribes the printer to the bus. Call Detach to remove it.
func (p *Printer) Attach(bus *event.Bus) {
	p.bus = bus
	p.subIDs = []string{
		bus.Subscribe(event.TypeTaskStarted, p.handle),
		bus.Subscribe(event.TypeTaskCompleted, p.handle),
		bus.Subscribe(event.TypeTaskFailed, p.handle),
		bus.Subscribe(event.TypeTaskSkipped, p.handle),
		bus.Subscribe(event.TypePlanCompleted, p.handle),
	}
}

// Detach removes the printer's subscriptions.
func (p *Printer) Detach() {
	if p.bus == nil {
		return
	}
	for _, id := range p.subIDs {
		p.bus.Unsubscribe(id)
	}
	p.subIDs = nil
	p.bus = nil
}

func (p *Printer) handle(e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev := e.(type) {
	case event.TaskStartedEvent:
		if ev.Attempt > 1 {
			fmt.Fprintf(p.w, "%s %s (attempt %d)\n", startedStyle.Render("▶"), ev.TaskID, ev.Attempt)
		} else {
			fmt.Fprintf(p.w, "%s %s\n", startedStyle.Render("▶"), ev.TaskID)
		}
	case event.TaskCompletedEvent:
		fmt.Fprintf(p.w, "%s %s\n", completedStyle.Render("✓"), ev.TaskID)
	case event.TaskFailedEvent:
		if ev.WillRetry {
			fmt.Fprintf(p.w, "%s %s: %s (will retry)\n", retryStyle.Render("↻"), ev.TaskID, ev.Message)
		} else {
			fmt.Fprintf(p.w, "%s %s: %s [%s]\n", failedStyle.Render("✗"), ev.TaskID, ev.Message, ev.Kind)
		}
	case event.TaskSkippedEvent:
		fmt.Fprintf(p.w, "%s %s (upstream %s failed)\n", skippedStyle.Render("⊘"), ev.TaskID, ev.Cause)
	case event.PlanCompletedEvent:
		verdict := completedStyle.Render("succeeded")
		if !ev.Success {
			verdict = failedStyle.Render("failed")
		}
		fmt.Fprintf(p.w, "%s\n", summaryStyle.Render(fmt.Sprintf(
			"plan %s: %d completed, %d failed, %d skipped, %d cancelled",
			verdict, ev.Completed, ev.Failed, ev.Skipped, ev.Cancelled)))
	}
}
