package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/cloudlet-sim/cloudlet-sim/sim"
)

var (
	// CLI flags mirroring the configuration knobs
	configPath     string  // optional YAML config file
	mode           string  // analysis mode
	seed           int64   // initial seed for the multi-stream generator
	stop           float64 // simulation horizon (transient mode)
	transient      float64 // transient period to discard (performance mode)
	batches        int     // batch quota (performance mode)
	batchDim       int     // samples per batch (performance mode)
	sampleInterval float64 // sampling interval
	confidence     float64 // confidence level for batch-means intervals
	logLevel       string  // log verbosity level
	outPath        string  // CSV output path for per-batch samples

	servers       int     // cloudlet service slots
	threshold     int     // cloudlet admission threshold
	rate1         float64 // class-1 arrival rate
	rate2         float64 // class-2 arrival rate
	service1      float64 // cloudlet class-1 service rate
	service2      float64 // cloudlet class-2 service rate
	cloudService1 float64 // cloud class-1 service rate
	cloudService2 float64 // cloud class-2 service rate
	setupMean     float64 // mean setup time for class-2 tasks on the cloud
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cloudlet-sim",
	Short: "Discrete-event simulator for a two-tier cloudlet/cloud system",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cloudlet/cloud simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := buildConfig(cmd)

		s, err := sim.NewSimulation(cfg)
		if err != nil {
			logrus.Fatalf("Invalid simulation setup: %v", err)
		}
		s.Run()

		report := s.Report()
		fmt.Print(report.String())

		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				logrus.Fatalf("Cannot create output file %s: %v", outPath, err)
			}
			defer f.Close()
			if err := s.Statistics().SaveCSV(f); err != nil {
				logrus.Fatalf("Cannot write statistics to %s: %v", outPath, err)
			}
			logrus.Infof("Per-batch statistics written to %s", outPath)
		}
	},
}

// buildConfig assembles the run configuration: defaults, then the YAML
// file if given, then any flag the user set explicitly.
func buildConfig(cmd *cobra.Command) *sim.Config {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Cannot load config: %v", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.General.Mode = sim.Mode(mode)
	}
	if flags.Changed("seed") {
		cfg.General.Seed = seed
	}
	if flags.Changed("stop") {
		cfg.General.Stop = stop
	}
	if flags.Changed("transient") {
		cfg.General.Transient = transient
	}
	if flags.Changed("batches") {
		cfg.General.Batches = batches
	}
	if flags.Changed("batch-dim") {
		cfg.General.BatchDim = batchDim
	}
	if flags.Changed("sample-interval") {
		cfg.General.SampleInterval = sampleInterval
	}
	if flags.Changed("confidence") {
		cfg.General.Confidence = confidence
	}
	if flags.Changed("servers") {
		cfg.Cloudlet.NServers = servers
	}
	if flags.Changed("threshold") {
		cfg.Cloudlet.Threshold = threshold
	}
	if flags.Changed("rate-1") {
		cfg.Arrival.Task1 = rate1
	}
	if flags.Changed("rate-2") {
		cfg.Arrival.Task2 = rate2
	}
	if flags.Changed("service-1") {
		cfg.Cloudlet.Service.Task1 = service1
	}
	if flags.Changed("service-2") {
		cfg.Cloudlet.Service.Task2 = service2
	}
	if flags.Changed("cloud-service-1") {
		cfg.Cloud.Service.Task1 = cloudService1
	}
	if flags.Changed("cloud-service-2") {
		cfg.Cloud.Service.Task2 = cloudService2
	}
	if flags.Changed("setup-mean") {
		cfg.Cloud.SetupMean = setupMean
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
	defaults := sim.DefaultConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file (flags override it)")
	runCmd.Flags().StringVar(&mode, "mode", string(defaults.General.Mode), "Analysis mode (transient, performance)")
	runCmd.Flags().Int64Var(&seed, "seed", defaults.General.Seed, "Initial seed for the multi-stream generator")
	runCmd.Flags().Float64Var(&stop, "stop", defaults.General.Stop, "Simulation horizon in seconds (transient mode)")
	runCmd.Flags().Float64Var(&transient, "transient", defaults.General.Transient, "Transient period to discard (performance mode)")
	runCmd.Flags().IntVar(&batches, "batches", defaults.General.Batches, "Number of batches to collect (performance mode)")
	runCmd.Flags().IntVar(&batchDim, "batch-dim", defaults.General.BatchDim, "Samples per batch (performance mode)")
	runCmd.Flags().Float64Var(&sampleInterval, "sample-interval", defaults.General.SampleInterval, "Sampling interval in seconds")
	runCmd.Flags().Float64Var(&confidence, "confidence", defaults.General.Confidence, "Confidence level for batch-means intervals")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&outPath, "out", "", "CSV output path for per-batch statistics")

	runCmd.Flags().IntVar(&servers, "servers", defaults.Cloudlet.NServers, "Cloudlet service slots")
	runCmd.Flags().IntVar(&threshold, "threshold", defaults.Cloudlet.Threshold, "Cloudlet admission threshold")
	runCmd.Flags().Float64Var(&rate1, "rate-1", defaults.Arrival.Task1, "Class-1 arrival rate (tasks/s)")
	runCmd.Flags().Float64Var(&rate2, "rate-2", defaults.Arrival.Task2, "Class-2 arrival rate (tasks/s)")
	runCmd.Flags().Float64Var(&service1, "service-1", defaults.Cloudlet.Service.Task1, "Cloudlet class-1 service rate (tasks/s)")
	runCmd.Flags().Float64Var(&service2, "service-2", defaults.Cloudlet.Service.Task2, "Cloudlet class-2 service rate (tasks/s)")
	runCmd.Flags().Float64Var(&cloudService1, "cloud-service-1", defaults.Cloud.Service.Task1, "Cloud class-1 service rate (tasks/s)")
	runCmd.Flags().Float64Var(&cloudService2, "cloud-service-2", defaults.Cloud.Service.Task2, "Cloud class-2 service rate (tasks/s)")
	runCmd.Flags().Float64Var(&setupMean, "setup-mean", defaults.Cloud.SetupMean, "Mean setup time for class-2 tasks restarted on the cloud (s)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
