package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/procsim/sim"
	"github.com/inference-sim/procsim/sim/monitor"
	"github.com/inference-sim/procsim/sim/scenario"
)

var (
	scenarioPath string  // YAML scenario file
	seed         int64   // Seed for random sampling (overrides the scenario)
	horizon      float64 // Simulation horizon (overrides the scenario)
	logLevel     string  // Log verbosity level
	runID        string  // Identifier stamped into monitoring records
	metricsFile  string  // Prometheus textfile output path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "procsim",
	Short: "Discrete-event process simulator",
}

// runCmd executes a scenario using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a process simulation scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", logLevel, err)
		}
		logrus.SetLevel(level)

		sc, err := scenario.Load(scenarioPath)
		if err != nil {
			return err
		}
		return run(cmd.OutOrStdout(), sc, resolveConfig(cmd, sc), metricsFile)
	},
}

// resolveConfig starts from the scenario's seed and horizon and applies the flags the
// user set explicitly.
func resolveConfig(cmd *cobra.Command, sc *scenario.Scenario) sim.SimConfig {
	cfg := sim.NewSimConfig(sc.Horizon, sc.Seed, runID)
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return cfg
}

// run builds and executes the scenario, then writes the summary to out.
func run(out io.Writer, sc *scenario.Scenario, cfg sim.SimConfig, metricsPath string) error {
	recorder := monitor.NewRecorder()
	sinks := monitor.Tee{recorder}
	registry := prometheus.NewRegistry()
	if metricsPath != "" {
		prom, err := monitor.NewPrometheus(registry)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		sinks = append(sinks, prom)
	}

	s, err := sc.Build(cfg, sinks)
	if err != nil {
		return fmt.Errorf("building scenario: %w", err)
	}
	logrus.Infof("Starting simulation run=%s seed=%d horizon=%g", cfg.RunID, cfg.Seed, cfg.Horizon)
	start := time.Now()
	if err := s.Run(); err != nil {
		return fmt.Errorf("simulation aborted: %w", err)
	}
	s.Shutdown()
	logrus.Infof("Simulation complete in %s", time.Since(start))

	if metricsPath != "" {
		if err := prometheus.WriteToTextfile(metricsPath, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return printSummary(out, monitor.Summarize(recorder))
}

func printSummary(out io.Writer, summary *monitor.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	_, err = fmt.Fprintf(out, "=== Simulation Summary ===\n%s\n", data)
	return err
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to the YAML scenario file")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random sampling (overrides the scenario seed)")
	runCmd.Flags().Float64Var(&horizon, "horizon", 0, "Simulation horizon, 0 = until no events remain (overrides the scenario)")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier stamped into records (random UUID when empty)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	_ = runCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(runCmd)
}
