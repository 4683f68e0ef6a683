package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/weave/internal/config"
	"github.com/aretw0/weave/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Weave is a unidirectional state runtime",
	Long: `Weave runs reducers over a serialized store, with middleware for logging,
metrics, observable sources and asynchronous effects.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringSlice("set", nil, "Override a configuration value (key=value)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads the configuration and builds the logger shared by commands.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	overrides, _ := cmd.Flags().GetStringSlice("set")

	cfg, err := config.Load(path, overrides)
	if err != nil {
		return cfg, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logging.New(level), nil
}
