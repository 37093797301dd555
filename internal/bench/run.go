package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kitsune-hash/runqy-benchmarks/internal/backend"
)

// State is the lifecycle of one run. Recorded and Failed are terminal, and
// Failed always means no result file was touched.
type State string

const (
	StateConfigured  State = "configured"
	StateRunning     State = "running"
	StateAggregating State = "aggregating"
	StateRecorded    State = "recorded"
	StateFailed      State = "failed"
)

// Runner executes one RunConfig end to end: open adapter, drive load,
// aggregate, persist. The adapter is closed on every exit path.
type Runner struct {
	Config RunConfig
	OutDir string
	Log    *slog.Logger

	// OnBatch is forwarded to the driver; see Driver.OnBatch.
	OnBatch func(completed int)

	// OpenBackend overrides adapter construction; tests inject fakes here.
	// Nil means backend.Open(Config.Backend).
	OpenBackend func(name string) (backend.Adapter, error)

	state State
}

// State reports the runner's current lifecycle phase.
func (r *Runner) State() State {
	if r.state == "" {
		return StateConfigured
	}
	return r.state
}

// Run executes the configured benchmark and returns the persisted result.
// Per-job failures become samples; only configuration, connection and
// aggregation failures abort, and an aborted run writes nothing.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	r.state = StateConfigured

	if err := r.Config.Validate(); err != nil {
		r.state = StateFailed
		return Result{}, err
	}

	open := r.OpenBackend
	if open == nil {
		open = backend.Open
	}
	adapter, err := open(r.Config.Backend)
	if err != nil {
		r.state = StateFailed
		return Result{}, fmt.Errorf("open backend: %w", err)
	}
	defer adapter.Close()

	if err := adapter.Ping(ctx); err != nil {
		r.state = StateFailed
		return Result{}, err
	}

	log.Info("run starting",
		"backend", adapter.Name(),
		"scenario", r.Config.Scenario,
		"jobs", r.Config.Jobs,
		"concurrency", r.Config.Concurrency)
	r.state = StateRunning

	driver := &Driver{
		Adapter:     adapter,
		Concurrency: r.Config.Concurrency,
		OnBatch:     r.OnBatch,
	}
	samples, elapsed, err := driver.Run(ctx, r.Config.Jobs, r.Config.Scenario)
	if err != nil {
		r.state = StateFailed
		return Result{}, err
	}

	r.state = StateAggregating
	agg, err := AggregateSamples(samples)
	if err != nil {
		r.state = StateFailed
		return Result{}, fmt.Errorf("aggregate: %w", err)
	}

	result := NewResult(adapter.Name(), r.Config, agg, elapsed, time.Now())
	path, err := result.Write(r.OutDir)
	if err != nil {
		r.state = StateFailed
		return Result{}, err
	}
	r.state = StateRecorded

	log.Info("run recorded",
		"path", path,
		"duration_s", result.DurationSeconds,
		"throughput", result.ThroughputPerSecond,
		"errors", result.Errors)
	return result, nil
}
