package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Iron-Ham/dagrun/internal/config"
	"github.com/Iron-Ham/dagrun/internal/coordinator"
	"github.com/Iron-Ham/dagrun/internal/logging"
	"github.com/Iron-Ham/dagrun/internal/plan"
	"github.com/Iron-Ham/dagrun/internal/progress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run <plan-file>",
	Short: "Execute a task plan",
	Long: `Execute a task plan file. The plan is validated first; a malformed
or cyclic plan is rejected before any task runs.

Tasks carrying a command are run as subprocesses in dependency order.
Transient failures are retried with exponential backoff, and sustained
failures trip a circuit breaker that rejects further dispatch.

The exit code indicates the result:
  0 - All tasks completed
  1 - The run failed, or the plan was rejected

Examples:
  # Run a plan with defaults (parallel, 4 workers)
  dagrun run plan.yaml

  # Run sequentially, aborting on the first failure
  dagrun run --mode sequential --fail-fast plan.yaml

  # Emit the full report as JSON
  dagrun run --json plan.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runJSON  bool
	runQuiet bool
)

func init() {
	runCmd.Flags().String("mode", "", "execution mode: sequential or parallel")
	runCmd.Flags().Int("max-concurrency", 0, "maximum concurrent tasks in parallel mode")
	runCmd.Flags().Bool("fail-fast", false, "abort the run on the first task failure")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output the execution report as JSON")
	runCmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress per-task progress output")

	_ = viper.BindPFlag("execution.mode", runCmd.Flags().Lookup("mode"))
	_ = viper.BindPFlag("execution.max_concurrency", runCmd.Flags().Lookup("max-concurrency"))
	_ = viper.BindPFlag("execution.fail_fast", runCmd.Flags().Lookup("fail-fast"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	spec, err := plan.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	logger, err := logging.New(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to open log destination: %w", err)
	}
	defer logger.Close()

	coord := coordinator.New(cfg, shellExecutor{}, coordinator.WithLogger(logger))

	if !runQuiet && !runJSON {
		printer := progress.NewPrinter(os.Stdout)
		printer.Attach(coord.Bus())
		defer printer.Detach()
	}

	report, runErr := coord.Execute(cmd.Context(), spec)

	if runJSON && report != nil {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		fmt.Println(string(data))
	}

	if runErr != nil {
		return runErr
	}
	if report != nil && !report.Success {
		return fmt.Errorf("run %s finished with failures: %d failed, %d skipped, %d cancelled",
			report.RunID, report.Failed, report.Skipped, report.Cancelled)
	}
	return nil
}

// loadConfig unmarshals the viper state and rejects invalid settings
// before anything else happens.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}
	return cfg, nil
}
