package bench

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kitsune-hash/runqy-benchmarks/internal/backend"
)

var tracer = otel.Tracer("github.com/kitsune-hash/runqy-benchmarks/internal/bench")

// Driver issues submissions in barrier-synchronized waves: each batch of up
// to Concurrency jobs runs concurrently and joins fully before the next
// batch starts. Deterministic and comparable across backends, deliberately
// not a steady-state pipeline.
type Driver struct {
	Adapter     backend.Adapter
	Concurrency int

	// OnBatch, when set, is called after each batch joins with the total
	// number of completed submissions. Feeds the CLI progress bar.
	OnBatch func(completed int)
}

// Run submits exactly jobs payloads and returns one sample per submission
// plus the wall-clock duration of the whole run. The duration spans first
// batch launch to last batch join; it is not the sum of latencies.
func (d *Driver) Run(ctx context.Context, jobs int, scenario Scenario) ([]LatencySample, time.Duration, error) {
	if jobs <= 0 {
		return nil, 0, &ConfigError{Msg: "driver requires jobs_count > 0"}
	}
	conc := d.Concurrency
	if conc < 1 {
		return nil, 0, &ConfigError{Msg: "driver requires concurrency >= 1"}
	}

	ctx, runSpan := tracer.Start(ctx, "bench.run", trace.WithAttributes(
		attribute.Int("jobs", jobs),
		attribute.Int("concurrency", conc),
		attribute.String("scenario", string(scenario)),
		attribute.String("backend", d.Adapter.Name()),
	))
	defer runSpan.End()

	samples := make([]LatencySample, jobs)
	start := time.Now()

	for base := 0; base < jobs; base += conc {
		n := conc
		if base+n > jobs {
			n = jobs - base
		}

		batchCtx, batchSpan := tracer.Start(ctx, "bench.batch",
			trace.WithAttributes(attribute.Int("batch.size", n)))

		var wg sync.WaitGroup
		wg.Add(n)
		for i := 0; i < n; i++ {
			idx := base + i
			go func() {
				defer wg.Done()
				job := backend.JobPayload{
					ID:        int64(idx),
					Scenario:  string(scenario),
					Timestamp: time.Now().UnixMilli(),
				}
				samples[idx] = timedSubmit(batchCtx, d.Adapter, job)
			}()
		}
		wg.Wait()
		batchSpan.End()

		if d.OnBatch != nil {
			d.OnBatch(base + n)
		}
	}

	return samples, time.Since(start), nil
}
