package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "execution.max_concurrency")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidModes returns the list of valid execution modes.
func ValidModes() []string {
	return []string{"sequential", "parallel"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidModes(), strings.ToLower(c.Execution.Mode)) {
		errors = append(errors, ValidationError{
			Field:   "execution.mode",
			Value:   c.Execution.Mode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidModes(), ", ")),
		})
	}
	if c.Execution.MaxConcurrency < 1 {
		errors = append(errors, ValidationError{
			Field:   "execution.max_concurrency",
			Value:   c.Execution.MaxConcurrency,
			Message: "must be at least 1",
		})
	}
	if c.Execution.PerTaskTimeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "execution.per_task_timeout",
			Value:   c.Execution.PerTaskTimeout,
			Message: "must be positive",
		})
	}

	if c.Retry.MaxAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "retry.max_attempts",
			Value:   c.Retry.MaxAttempts,
			Message: "must be at least 1",
		})
	}
	if c.Retry.BaseDelay < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.base_delay",
			Value:   c.Retry.BaseDelay,
			Message: "must not be negative",
		})
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		errors = append(errors, ValidationError{
			Field:   "retry.max_delay",
			Value:   c.Retry.MaxDelay,
			Message: "must be at least base_delay",
		})
	}
	if c.Retry.JitterFraction < 0 || c.Retry.JitterFraction >= 1 {
		errors = append(errors, ValidationError{
			Field:   "retry.jitter_fraction",
			Value:   c.Retry.JitterFraction,
			Message: "must be in [0, 1)",
		})
	}

	if c.Breaker.WindowSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "breaker.window_size",
			Value:   c.Breaker.WindowSize,
			Message: "must be at least 1",
		})
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "breaker.failure_threshold",
			Value:   c.Breaker.FailureThreshold,
			Message: "must be in (0, 1]",
		})
	}
	if c.Breaker.Cooldown <= 0 {
		errors = append(errors, ValidationError{
			Field:   "breaker.cooldown",
			Value:   c.Breaker.Cooldown,
			Message: "must be positive",
		})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
