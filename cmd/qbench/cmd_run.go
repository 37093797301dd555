package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kitsune-hash/runqy-benchmarks/internal/bench"
	"github.com/kitsune-hash/runqy-benchmarks/internal/observability"
	"github.com/kitsune-hash/runqy-benchmarks/internal/progress"
)

var (
	runBackend    string
	runOutDir     string
	runQuiet      bool
	traceEnabled  bool
	traceEndpoint string
)

var runCmd = &cobra.Command{
	Use:   "run [jobs_count] [scenario] [concurrency]",
	Short: "Run one benchmark against a backend",
	Long: `Run one benchmark against a backend.

Positional arguments default to 1000 jobs, scenario "simple" and
concurrency 10. Backend connection parameters come from the environment:

  runqy:    RUNQY_URL (http://localhost:3000), RUNQY_API_KEY, RUNQY_QUEUE
  celery:   REDIS_ADDR (localhost:6379), REDIS_DB (1), CELERY_QUEUE
  temporal: TEMPORAL_HOSTPORT (localhost:7233), TEMPORAL_TASK_QUEUE
  nats:     NATS_URL (nats://localhost:4222)
  stub:     STUB_URL (http://localhost:8712)`,
	Args: cobra.MaximumNArgs(3),
	RunE: runBenchmark,
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the standard config matrix against a backend",
	Long:  "Runs the fixed comparison matrix (1000/10, 5000/50, 10000/100 jobs/concurrency) for the chosen scenario, writing one result file per config.",
	RunE:  runAll,
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, allCmd} {
		cmd.Flags().StringVar(&runBackend, "backend", "runqy", "Backend to benchmark (runqy, celery, temporal, nats, stub)")
		cmd.Flags().StringVar(&runOutDir, "out-dir", "results", "Directory for result records")
		cmd.Flags().BoolVar(&runQuiet, "quiet", false, "Suppress the progress bar")
		cmd.Flags().BoolVar(&traceEnabled, "trace", false, "Emit OpenTelemetry spans for the run and its batches")
		cmd.Flags().StringVar(&traceEndpoint, "trace-endpoint", "", "OTLP/HTTP endpoint (empty = stdout exporter)")
	}
	allCmd.Flags().String("scenario", "simple", "Scenario for every matrix entry")
}

func parseRunArgs(args []string) (bench.RunConfig, error) {
	cfg := bench.RunConfig{
		Jobs:        1000,
		Scenario:    bench.ScenarioSimple,
		Concurrency: 10,
		Backend:     runBackend,
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return cfg, fmt.Errorf("jobs_count: %w", err)
		}
		cfg.Jobs = n
	}
	if len(args) > 1 {
		cfg.Scenario = bench.Scenario(args[1])
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return cfg, fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = n
	}
	return cfg, cfg.Validate()
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := parseRunArgs(args)
	if err != nil {
		return err
	}

	shutdown, err := observability.InitTracer(traceEnabled, "qbench", traceEndpoint)
	if err != nil {
		return err
	}
	defer shutdown(cmd.Context())

	result, err := executeRun(cmd, cfg)
	if err != nil {
		return err
	}
	printSummary(result)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	scenario, _ := cmd.Flags().GetString("scenario")

	shutdown, err := observability.InitTracer(traceEnabled, "qbench", traceEndpoint)
	if err != nil {
		return err
	}
	defer shutdown(cmd.Context())

	matrix := []struct {
		jobs, concurrency int
	}{
		{1000, 10},
		{5000, 50},
		{10000, 100},
	}
	for _, m := range matrix {
		cfg := bench.RunConfig{
			Jobs:        m.jobs,
			Scenario:    bench.Scenario(scenario),
			Concurrency: m.concurrency,
			Backend:     runBackend,
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		result, err := executeRun(cmd, cfg)
		if err != nil {
			return fmt.Errorf("%s jobs=%d: %w", runBackend, m.jobs, err)
		}
		printSummary(result)
	}
	return nil
}

func executeRun(cmd *cobra.Command, cfg bench.RunConfig) (bench.Result, error) {
	runner := &bench.Runner{
		Config: cfg,
		OutDir: runOutDir,
	}

	var bar *progress.Bar
	if !runQuiet {
		caption := fmt.Sprintf("%s/%s", cfg.Backend, cfg.Scenario)
		bar = progress.NewBar(int64(cfg.Jobs), caption)
		runner.OnBatch = func(completed int) {
			bar.SetCurrent(int64(completed))
		}
	}

	result, err := runner.Run(cmd.Context())
	if bar != nil {
		bar.Finish()
	}
	return result, err
}

func printSummary(r bench.Result) {
	header := color.New(color.FgCyan, color.Bold)
	header.Printf("\n%s — %s\n", r.System, r.Scenario)
	fmt.Printf("  Jobs:        %d\n", r.JobsCount)
	fmt.Printf("  Duration:    %.3fs\n", r.DurationSeconds)
	fmt.Printf("  Throughput:  %.2f jobs/sec\n", r.ThroughputPerSecond)
	fmt.Printf("  Latency P50: %.3fms\n", r.LatencyP50MS)
	fmt.Printf("  Latency P95: %.3fms\n", r.LatencyP95MS)
	fmt.Printf("  Latency P99: %.3fms\n", r.LatencyP99MS)
	fmt.Printf("  Latency avg: %.3fms (min %.3f, max %.3f)\n", r.LatencyAvgMS, r.LatencyMinMS, r.LatencyMaxMS)
	if r.Errors > 0 {
		color.New(color.FgRed).Printf("  Errors:      %d\n", r.Errors)
	} else {
		fmt.Printf("  Errors:      0\n")
	}
}
