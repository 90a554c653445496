package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/stagesim/sim"
	"github.com/inference-sim/stagesim/sim/trace"
)

var (
	// CLI flags for the run
	seed           int64   // Seed for service-time and batch-size draws
	logLevel       string  // Log verbosity level
	configPath     string  // Optional YAML run configuration
	envFile        string  // Optional dotenv file
	traceLevel     string  // Trace verbosity: none, batches, all
	resultsPath    string  // Optional JSON output path
	showRecords    bool    // Print the per-unit table
	pollInterval   float64 // Idle consumer re-check delay; 0 = wake on put
	startTime      string  // Display time of virtual t=0, HH:MM
	tableCount     int     // Number of tables
	peoplePerTable int     // Units per table

	// CLI flags for stage pools
	prepServers      int // Prep servers
	transportServers int // Transport servers
	finishServers    int // Finish servers
	transportWorkers int // Transport worker loops
	finishWorkers    int // Finish worker loops

	// CLI flags for service-time and batch ranges
	prepMin, prepMax           float64
	transportMin, transportMax float64
	finishMin, finishMax       float64
	batchMin, batchMax         int
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "stagesim",
	Short: "Discrete-event simulator for a prep → batched transport → finish pipeline",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline simulation",
	Run: func(cmd *cobra.Command, args []string) {
		if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
			logrus.Fatalf("%v", err)
		}
		applyEnvDefaults(cmd.Flags().Changed)

		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		cfg, err := resolveConfig(sim.DefaultConfig(), configPath, cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Simulating %d units (%d tables x %d), prep=%s transport=%s finish=%s batch=%s",
			cfg.TotalUnits(), cfg.TableCount, cfg.PeoplePerTable,
			cfg.PrepTime, cfg.TransportTime, cfg.FinishTime, cfg.TransportBatch)

		s, err := sim.NewSimulator(cfg, trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rt := s.Run()

		writeReport(os.Stdout, s.Config(), rt, s.Trace, showRecords)
		if resultsPath != "" {
			if err := writeResultsJSON(resultsPath, rt); err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Results written to %s", resultsPath)
		}

		logrus.Infof("Simulation %s complete: %d units finished.", s.RunID(), s.Completed())
	},
}

// resolveConfig layers the run configuration: base, then the YAML file at
// path (if any), then every flag the user explicitly changed.
func resolveConfig(base sim.SimulationConfig, path string, changed func(string) bool) (sim.SimulationConfig, error) {
	cfg := base
	if path != "" {
		file, err := sim.LoadConfigFile(path)
		if err != nil {
			return base, err
		}
		if cfg, err = file.Apply(cfg); err != nil {
			return base, err
		}
	}

	intFlags := []struct {
		name string
		dst  *int
		val  int
	}{
		{"tables", &cfg.TableCount, tableCount},
		{"people-per-table", &cfg.PeoplePerTable, peoplePerTable},
		{"prep-servers", &cfg.PrepServers, prepServers},
		{"transport-servers", &cfg.TransportServers, transportServers},
		{"finish-servers", &cfg.FinishServers, finishServers},
		{"transport-workers", &cfg.TransportWorkers, transportWorkers},
		{"finish-workers", &cfg.FinishWorkers, finishWorkers},
		{"batch-min", &cfg.TransportBatch.Min, batchMin},
		{"batch-max", &cfg.TransportBatch.Max, batchMax},
	}
	for _, f := range intFlags {
		if changed(f.name) {
			*f.dst = f.val
		}
	}

	floatFlags := []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"prep-min", &cfg.PrepTime.Min, prepMin},
		{"prep-max", &cfg.PrepTime.Max, prepMax},
		{"transport-min", &cfg.TransportTime.Min, transportMin},
		{"transport-max", &cfg.TransportTime.Max, transportMax},
		{"finish-min", &cfg.FinishTime.Min, finishMin},
		{"finish-max", &cfg.FinishTime.Max, finishMax},
		{"poll-interval", &cfg.PollInterval, pollInterval},
	}
	for _, f := range floatFlags {
		if changed(f.name) {
			*f.dst = f.val
		}
	}

	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("start-time") {
		start, err := sim.ParseStartTime(cfg.StartWallClock, startTime)
		if err != nil {
			return base, err
		}
		cfg.StartWallClock = start
	}

	if err := cfg.Validate(); err != nil {
		return base, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	def := sim.DefaultConfig()

	runCmd.Flags().Int64Var(&seed, "seed", def.Seed, "Seed for service-time and batch-size draws")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration; explicitly set flags override it")
	runCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file providing "+envConfigPath+" and "+envLogLevel)
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, batches, all)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "Write the result table as JSON to this path")
	runCmd.Flags().BoolVar(&showRecords, "records", false, "Print one row per completed unit")
	runCmd.Flags().Float64Var(&pollInterval, "poll-interval", def.PollInterval,
		fmt.Sprintf("Idle worker re-check delay in seconds; 0 wakes workers on arrival (%g for classic polling)", sim.ReferencePollInterval))
	runCmd.Flags().StringVar(&startTime, "start-time", def.StartWallClock.Format("15:04"), "Wall-clock time of virtual t=0 (HH:MM)")

	// Workload
	runCmd.Flags().IntVar(&tableCount, "tables", def.TableCount, "Number of tables")
	runCmd.Flags().IntVar(&peoplePerTable, "people-per-table", def.PeoplePerTable, "Units per table")

	// Stage pools
	runCmd.Flags().IntVar(&prepServers, "prep-servers", def.PrepServers, "Prep servers")
	runCmd.Flags().IntVar(&transportServers, "transport-servers", def.TransportServers, "Transport servers")
	runCmd.Flags().IntVar(&finishServers, "finish-servers", def.FinishServers, "Finish servers")
	runCmd.Flags().IntVar(&transportWorkers, "transport-workers", def.TransportWorkers, "Transport worker loops")
	runCmd.Flags().IntVar(&finishWorkers, "finish-workers", def.FinishWorkers, "Finish worker loops")

	// Service times (seconds) and batch sizes
	runCmd.Flags().Float64Var(&prepMin, "prep-min", def.PrepTime.Min, "Minimum prep time")
	runCmd.Flags().Float64Var(&prepMax, "prep-max", def.PrepTime.Max, "Maximum prep time")
	runCmd.Flags().Float64Var(&transportMin, "transport-min", def.TransportTime.Min, "Minimum transport time per batch")
	runCmd.Flags().Float64Var(&transportMax, "transport-max", def.TransportTime.Max, "Maximum transport time per batch")
	runCmd.Flags().Float64Var(&finishMin, "finish-min", def.FinishTime.Min, "Minimum finish time")
	runCmd.Flags().Float64Var(&finishMax, "finish-max", def.FinishTime.Max, "Maximum finish time")
	runCmd.Flags().IntVar(&batchMin, "batch-min", def.TransportBatch.Min, "Minimum transport batch size")
	runCmd.Flags().IntVar(&batchMax, "batch-max", def.TransportBatch.Max, "Maximum transport batch size")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
