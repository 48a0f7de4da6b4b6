package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Iron-Ham/dagrun/internal/engine"
	"github.com/Iron-Ham/dagrun/internal/graph"
)

// shellExecutor runs a task's command payload as a subprocess. Tasks
// without a command succeed immediately, which lets plans carry
// milestone-only tasks that exist purely for ordering.
type shellExecutor struct{}

func (shellExecutor) Execute(ctx context.Context, task *graph.Task) engine.Outcome {
	argv, ok := task.Payload.([]string)
	if !ok || len(argv) == 0 {
		return engine.Outcome{Success: true}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Engine classifies the timeout or cancellation from its
			// own context state; report it as-is.
			return engine.Outcome{Err: graph.WrapTaskError(graph.KindCancelled, "command interrupted", ctx.Err())}
		}
		kind := classifyExit(err)
		msg := fmt.Sprintf("command %q failed: %v", strings.Join(argv, " "), err)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, firstLine(s))
		}
		return engine.Outcome{Err: graph.WrapTaskError(kind, msg, err)}
	}

	return engine.Outcome{Success: true, Output: stdout.String()}
}

// classifyExit maps subprocess failures onto the retry taxonomy. A
// command that could not be started at all will not start on a retry
// either, so that is permanent; a nonzero exit may be transient.
func classifyExit(err error) graph.ErrorKind {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return graph.KindTransient
	}
	return graph.KindPermanent
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
