// Package cmd wires the dagrun CLI: plan validation and plan execution
// commands over the coordinator.
package cmd

import (
	"context"
	"strings"

	"github.com/Iron-Ham/dagrun/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dagrun",
	Short: "Dependency-aware task plan executor",
	Long: `Dagrun takes a decomposed task plan, validates its dependency
graph, and executes the tasks in dependency order with bounded
concurrency, retries, and a failure circuit breaker.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context so an
// interrupt signal cancels in-flight task execution.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/dagrun/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("$HOME/.config/dagrun")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DAGRUN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., DAGRUN_EXECUTION_MAX_CONCURRENCY for execution.max_concurrency
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
