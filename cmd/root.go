package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tzaika/iFogSim/sim/controller"
	"github.com/tzaika/iFogSim/sim/trace"
)

var (
	scenarioPath           string  // Path to the scenario YAML
	resultsDir             string  // Directory receiving the report files
	logLevel               string  // Log verbosity level
	seed                   int64   // Seed for sensor distributions and selectivity draws
	maxSimulationTime      float64 // Virtual time at which the run stops
	resourceManageInterval float64 // Period of the controller's resource-management tick
	traceLevel             string  // Decision trace verbosity
	printSummary           bool    // Print a result digest to stdout
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ifogsim",
	Short: "Discrete-event simulator for fog computing environments",
}

// runCmd builds the scenario and runs it to completion
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a fog simulation scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()

		if scenarioPath == "" {
			logrus.Fatalf("Scenario not provided. Use --scenario <file>.")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		sc, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Invalid scenario %s: %v", scenarioPath, err)
		}

		cfg := resolveConfig(cmd, sc)
		runSeed := seed
		if sc.Seed != nil && !cmd.Flags().Changed("seed") {
			runSeed = *sc.Seed
		}
		logrus.Infof("Starting %s: horizon=%g, resource-manage interval=%g, seed=%d",
			sc.Name, cfg.MaxSimulationTime, cfg.ResourceManageInterval, runSeed)

		c, env, err := Build(sc, runSeed, cfg)
		if err != nil {
			logrus.Fatalf("Building scenario %s: %v", sc.Name, err)
		}
		env.Engine.Run()
		if err := c.Err(); err != nil {
			logrus.Fatalf("Simulation aborted: %v", err)
		}

		if cfg.Trace.Enabled() {
			s := trace.Summarize(c.Trace())
			logrus.Infof("Trace: %d placed pairs, %d dropped pairs, %d devices dispatched, %d instances launched",
				s.PlacedPairs, s.DroppedPairs, s.DevicesDispatched, s.InstancesLaunched)
		}
		logrus.Infof("Simulation complete: %d events dispatched", env.Engine.Dispatched)
	},
}

// validateCmd checks a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file for errors",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		sc, err := LoadScenario(scenarioPath)
		if err != nil {
			logrus.Fatalf("Invalid scenario %s: %v", scenarioPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d devices, %d applications\n", sc.Name, len(sc.Devices), len(sc.Applications))
	},
}

func setLogLevel() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// resolveConfig merges flags over scenario values. A flag only wins when the
// user set it explicitly; otherwise a non-zero scenario value is used.
func resolveConfig(cmd *cobra.Command, sc *Scenario) controller.Config {
	cfg := controller.DefaultConfig()
	cfg.ResultsDir = resultsDir
	cfg.Trace = trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}

	cfg.MaxSimulationTime = maxSimulationTime
	if !cmd.Flags().Changed("max-simulation-time") && sc.MaxSimulationTime > 0 {
		cfg.MaxSimulationTime = sc.MaxSimulationTime
	}
	cfg.ResourceManageInterval = resourceManageInterval
	if !cmd.Flags().Changed("resource-manage-interval") && sc.ResourceManageInterval > 0 {
		cfg.ResourceManageInterval = sc.ResourceManageInterval
	}
	if sc.CloudName != "" {
		cfg.CloudName = sc.CloudName
	}
	if printSummary {
		cfg.Summary = os.Stdout
	}
	return cfg
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&resultsDir, "results-dir", controller.DefaultResultsDir, "Directory for the report files (empty disables them)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for sensor distributions and selectivity draws")
	runCmd.Flags().Float64Var(&maxSimulationTime, "max-simulation-time", controller.DefaultMaxSimulationTime, "Virtual time at which the simulation stops")
	runCmd.Flags().Float64Var(&resourceManageInterval, "resource-manage-interval", controller.DefaultResourceManageInterval, "Period of the resource-management tick")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")
	runCmd.Flags().BoolVar(&printSummary, "summary", false, "Print a result digest to stdout")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
