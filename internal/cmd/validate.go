package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Iron-Ham/dagrun/internal/coordinator"
	"github.com/Iron-Ham/dagrun/internal/graph"
	"github.com/Iron-Ham/dagrun/internal/plan"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan-file>",
	Short: "Validate a task plan without executing it",
	Long: `Validate a task plan file for structural issues and correctness.

This command checks:
  - Valid YAML/JSON syntax
  - Task IDs (present, unique)
  - Dependency references (no unknown tasks, no self-dependencies)
  - Dependency cycles

On success it prints the computed execution layers and the critical
path so the parallelism of a plan can be judged before running it.

The exit code indicates the result:
  0 - Plan is valid
  1 - Plan has validation errors or could not be parsed

Examples:
  # Validate a plan file
  dagrun validate plan.yaml

  # Validate with JSON output
  dagrun validate --json plan.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateJSON bool

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output validation result as JSON")
	rootCmd.AddCommand(validateCmd)
}

// ValidationOutput is the JSON output format for validation results.
type ValidationOutput struct {
	Valid                bool       `json:"valid"`
	FilePath             string     `json:"file_path"`
	Problems             []string   `json:"problems,omitempty"`
	Cycle                []string   `json:"cycle,omitempty"`
	ParseError           string     `json:"parse_error,omitempty"`
	TaskCount            int        `json:"task_count,omitempty"`
	Layers               [][]string `json:"layers,omitempty"`
	CriticalPath         []string   `json:"critical_path,omitempty"`
	CriticalPathEstimate float64    `json:"critical_path_estimate,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	if _, err := os.Stat(filePath); err != nil {
		var errMsg string
		if os.IsNotExist(err) {
			errMsg = fmt.Sprintf("file not found: %s", filePath)
		} else if os.IsPermission(err) {
			errMsg = fmt.Sprintf("permission denied: %s", filePath)
		} else {
			errMsg = fmt.Sprintf("cannot access file: %s: %v", filePath, err)
		}
		return validationFailure(ValidationOutput{FilePath: filePath, ParseError: errMsg})
	}

	spec, err := plan.Load(filePath)
	if err != nil {
		return validationFailure(ValidationOutput{
			FilePath:   filePath,
			ParseError: fmt.Sprintf("failed to parse plan: %v", err),
		})
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	inspection, err := coordinator.New(cfg, shellExecutor{}).Inspect(spec)
	if err != nil {
		out := ValidationOutput{FilePath: filePath}
		var malformed *graph.MalformedGraphError
		var cyclic *graph.CyclicDependencyError
		switch {
		case errors.As(err, &malformed):
			out.Problems = malformed.Problems
		case errors.As(err, &cyclic):
			out.Cycle = cyclic.Cycle
		default:
			out.ParseError = err.Error()
		}
		return validationFailure(out)
	}

	if validateJSON {
		return outputJSON(ValidationOutput{
			Valid:                true,
			FilePath:             filePath,
			TaskCount:            inspection.TaskCount,
			Layers:               inspection.Layers,
			CriticalPath:         inspection.CriticalPath,
			CriticalPathEstimate: inspection.CriticalPathEstimate,
		})
	}

	fmt.Printf("Validating: %s\n\n", filePath)
	fmt.Println("Status: VALID")
	fmt.Printf("  Tasks: %d\n", inspection.TaskCount)
	fmt.Printf("  Execution layers: %d\n", len(inspection.Layers))
	for i, layer := range inspection.Layers {
		fmt.Printf("    %d. %s\n", i+1, strings.Join(layer, ", "))
	}
	fmt.Printf("  Critical path (cost %.1f): %s\n",
		inspection.CriticalPathEstimate, strings.Join(inspection.CriticalPath, " -> "))
	return nil
}

// validationFailure reports an invalid plan in the requested format and
// signals exit code 1.
func validationFailure(out ValidationOutput) error {
	if validateJSON {
		return outputJSON(out)
	}

	fmt.Printf("Validating: %s\n\n", out.FilePath)
	fmt.Println("Status: INVALID")
	if out.ParseError != "" {
		fmt.Printf("  %s\n", out.ParseError)
	}
	for _, p := range out.Problems {
		fmt.Printf("  - %s\n", p)
	}
	if len(out.Cycle) > 0 {
		fmt.Printf("  - dependency cycle: %s\n", strings.Join(out.Cycle, " -> "))
	}
	return fmt.Errorf("plan validation failed")
}

// outputJSON marshals and prints the validation output as formatted JSON.
// Returns a silentError if validation failed to signal exit code 1.
func outputJSON(output ValidationOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		// Fallback: keep --json mode emitting valid JSON even when
		// marshaling fails, for CI pipelines that parse the output.
		fmt.Printf(`{"valid": false, "file_path": %q, "parse_error": "internal error: %s"}`+"\n",
			output.FilePath, err.Error())
		return &silentError{}
	}
	fmt.Println(string(data))

	if !output.Valid {
		return &silentError{}
	}
	return nil
}

// silentError signals that validation failed but output was already provided.
// Used to set exit code 1 without Cobra printing a duplicate error message.
type silentError struct{}

func (e *silentError) Error() string {
	return "validation failed"
}
