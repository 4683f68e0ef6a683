package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/demo"
	"github.com/aretw0/weave/internal/presentation/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the demo workload and print the final state",
	Long: `Drives concurrent increments, zipped asynchronous fetches and a ticker
through a store, then prints a summary once everything settled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		quiet, _ := cmd.Flags().GetBool("quiet")

		out := cmd.OutOrStdout()
		if !quiet && tui.IsTerminal(out) {
			tui.PrintBanner(out, weave.Version)
		}

		rt, err := demo.New(cfg, logger, prometheus.NewRegistry())
		if err != nil {
			return fmt.Errorf("failed to start demo: %w", err)
		}
		defer rt.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		state, err := demo.Run(ctx, rt, cfg.Demo)
		if err != nil {
			return err
		}

		rendered, err := tui.NewRenderer(out)(demo.Report(state, rt.History.Entries()))
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Duration("timeout", 30*time.Second, "Maximum time to wait for the workload to settle")
	demoCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
}
