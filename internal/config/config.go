// Package config defines the dagrun configuration surface and its
// viper-backed loading: defaults, YAML config files, and DAGRUN_*
// environment variables.
package config

import (
	"strings"
	"time"

	"github.com/Iron-Ham/dagrun/internal/breaker"
	"github.com/Iron-Ham/dagrun/internal/engine"
	"github.com/Iron-Ham/dagrun/internal/event"
	"github.com/Iron-Ham/dagrun/internal/logging"
	"github.com/Iron-Ham/dagrun/internal/retry"
	"github.com/spf13/viper"
)

// Config is the complete dagrun configuration.
type Config struct {
	Execution ExecutionConfig `mapstructure:"execution"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Breaker   BreakerConfig   `mapstructure:"breaker"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ExecutionConfig controls how the engine dispatches tasks.
type ExecutionConfig struct {
	// Mode is "sequential" or "parallel".
	Mode string `mapstructure:"mode"`
	// MaxConcurrency bounds concurrent tasks in parallel mode.
	MaxConcurrency int `mapstructure:"max_concurrency"`
	// FailFast aborts the whole run on the first task failure.
	FailFast bool `mapstructure:"fail_fast"`
	// PerTaskTimeout is the hard deadline for a single executor call.
	PerTaskTimeout time.Duration `mapstructure:"per_task_timeout"`
	// TimeoutIsPermanent classifies executor timeouts as non-retryable.
	TimeoutIsPermanent bool `mapstructure:"timeout_is_permanent"`
}

// RetryConfig controls per-task retry behavior.
type RetryConfig struct {
	// MaxAttempts is the total attempts allowed per task, including the first.
	MaxAttempts int `mapstructure:"max_attempts"`
	// BaseDelay is the backoff before the second attempt.
	BaseDelay time.Duration `mapstructure:"base_delay"`
	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration `mapstructure:"max_delay"`
	// JitterFraction randomizes each delay by ±this fraction; in [0, 1).
	JitterFraction float64 `mapstructure:"jitter_fraction"`
}

// BreakerConfig controls the plan-scoped circuit breaker.
type BreakerConfig struct {
	// WindowSize is the number of recent task completions considered.
	WindowSize int `mapstructure:"window_size"`
	// FailureThreshold is the failure fraction that trips the breaker; in (0, 1].
	FailureThreshold float64 `mapstructure:"failure_threshold"`
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// LoggingConfig controls structured logging output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// File is the log destination; empty logs to stderr.
	File string `mapstructure:"file"`
}

// SetDefaults registers default values with viper so they apply even
// without a config file.
func SetDefaults() {
	viper.SetDefault("execution.mode", string(engine.ModeParallel))
	viper.SetDefault("execution.max_concurrency", engine.DefaultMaxConcurrency)
	viper.SetDefault("execution.fail_fast", false)
	viper.SetDefault("execution.per_task_timeout", engine.DefaultPerTaskTimeout)
	viper.SetDefault("execution.timeout_is_permanent", false)

	viper.SetDefault("retry.max_attempts", retry.DefaultMaxAttempts)
	viper.SetDefault("retry.base_delay", retry.DefaultBaseDelay)
	viper.SetDefault("retry.max_delay", retry.DefaultMaxDelay)
	viper.SetDefault("retry.jitter_fraction", retry.DefaultJitterFraction)

	viper.SetDefault("breaker.window_size", breaker.DefaultWindowSize)
	viper.SetDefault("breaker.failure_threshold", breaker.DefaultFailureThreshold)
	viper.SetDefault("breaker.cooldown", breaker.DefaultCooldown)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}

// Load unmarshals the current viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a Config populated with package defaults, bypassing
// viper. Useful for tests and embedding.
func Default() *Config {
	return &Config{
		Execution: ExecutionConfig{
			Mode:           string(engine.ModeParallel),
			MaxConcurrency: engine.DefaultMaxConcurrency,
			PerTaskTimeout: engine.DefaultPerTaskTimeout,
		},
		Retry: RetryConfig{
			MaxAttempts:    retry.DefaultMaxAttempts,
			BaseDelay:      retry.DefaultBaseDelay,
			MaxDelay:       retry.DefaultMaxDelay,
			JitterFraction: retry.DefaultJitterFraction,
		},
		Breaker: BreakerConfig{
			WindowSize:       breaker.DefaultWindowSize,
			FailureThreshold: breaker.DefaultFailureThreshold,
			Cooldown:         breaker.DefaultCooldown,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// EngineOptions converts the configuration into engine options, attaching
// the given bus and logger and a freshly built breaker.
func (c *Config) EngineOptions(bus *event.Bus, logger *logging.Logger) engine.Options {
	mode := engine.Mode(strings.ToLower(c.Execution.Mode))
	if mode != engine.ModeSequential {
		mode = engine.ModeParallel
	}
	return engine.Options{
		Mode:               mode,
		MaxConcurrency:     c.Execution.MaxConcurrency,
		FailFast:           c.Execution.FailFast,
		PerTaskTimeout:     c.Execution.PerTaskTimeout,
		TimeoutIsPermanent: c.Execution.TimeoutIsPermanent,
		Retry: retry.Policy{
			MaxAttempts:    c.Retry.MaxAttempts,
			BaseDelay:      c.Retry.BaseDelay,
			MaxDelay:       c.Retry.MaxDelay,
			JitterFraction: c.Retry.JitterFraction,
		},
		Breaker: breaker.New(c.Breaker.WindowSize, c.Breaker.FailureThreshold, c.Breaker.Cooldown),
		Bus:     bus,
		Logger:  logger,
	}
}
