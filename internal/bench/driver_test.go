package bench

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kitsune-hash/runqy-benchmarks/internal/backend"
)

// fakeAdapter is an in-memory backend for driver and runner tests.
type fakeAdapter struct {
	name    string
	delay   time.Duration
	failAll bool
	pingErr error

	mu          sync.Mutex
	inflight    int
	maxInflight int
	submits     atomic.Int64
	closed      atomic.Bool
}

func (f *fakeAdapter) Name() string {
	if f.name == "" {
		return "fake"
	}
	return f.name
}

func (f *fakeAdapter) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeAdapter) Submit(ctx context.Context, job backend.JobPayload) error {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.maxInflight {
		f.maxInflight = f.inflight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.submits.Add(1)

	f.mu.Lock()
	f.inflight--
	f.mu.Unlock()

	if f.failAll {
		return &backend.SubmissionError{Backend: f.Name(), Cause: errors.New("always fails")}
	}
	return nil
}

func (f *fakeAdapter) Close() error {
	f.closed.Store(true)
	return nil
}

func TestDriverSubmitsExactly(t *testing.T) {
	fa := &fakeAdapter{}
	d := &Driver{Adapter: fa, Concurrency: 10}

	samples, elapsed, err := d.Run(context.Background(), 100, ScenarioSimple)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := fa.submits.Load(); got != 100 {
		t.Errorf("submissions = %d, want 100", got)
	}
	if len(samples) != 100 {
		t.Errorf("samples = %d, want 100", len(samples))
	}
	if elapsed <= 0 {
		t.Errorf("elapsed = %v, want > 0", elapsed)
	}
	for i, s := range samples {
		if s.Err != "" {
			t.Fatalf("sample %d unexpectedly failed: %s", i, s.Err)
		}
	}
}

func TestDriverBoundsConcurrency(t *testing.T) {
	fa := &fakeAdapter{delay: time.Millisecond}
	d := &Driver{Adapter: fa, Concurrency: 7}

	if _, _, err := d.Run(context.Background(), 50, ScenarioSimple); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if fa.maxInflight > 7 {
		t.Errorf("max in-flight = %d, want <= 7", fa.maxInflight)
	}
}

func TestDriverBatchBarrier(t *testing.T) {
	// 4 jobs at concurrency 2 is two sequential batches; with every
	// submission sleeping 20ms the run cannot finish under 40ms.
	fa := &fakeAdapter{delay: 20 * time.Millisecond}
	d := &Driver{Adapter: fa, Concurrency: 2}

	_, elapsed, err := d.Run(context.Background(), 4, ScenarioSimple)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if elapsed < 40*time.Millisecond {
		t.Errorf("elapsed = %v, want >= 40ms (batches must not overlap)", elapsed)
	}
}

func TestDriverSingleBatchWhenConcurrencyExceedsJobs(t *testing.T) {
	fa := &fakeAdapter{delay: time.Millisecond}
	var batches []int
	d := &Driver{
		Adapter:     fa,
		Concurrency: 16,
		OnBatch:     func(completed int) { batches = append(batches, completed) },
	}

	if _, _, err := d.Run(context.Background(), 3, ScenarioSimple); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(batches) != 1 || batches[0] != 3 {
		t.Errorf("batch completions = %v, want [3]", batches)
	}
	if fa.maxInflight > 3 {
		t.Errorf("max in-flight = %d, want <= 3", fa.maxInflight)
	}
}

func TestDriverKeepsFailureLatency(t *testing.T) {
	fa := &fakeAdapter{failAll: true, delay: 2 * time.Millisecond}
	d := &Driver{Adapter: fa, Concurrency: 4}

	samples, _, err := d.Run(context.Background(), 8, ScenarioSimple)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	for i, s := range samples {
		if s.Err == "" {
			t.Fatalf("sample %d should have failed", i)
		}
		if s.LatencyMS < 2 {
			t.Errorf("sample %d latency = %vms, want >= 2ms (cost of failure is measured)", i, s.LatencyMS)
		}
	}
}

func TestDriverRejectsInvalidLoad(t *testing.T) {
	d := &Driver{Adapter: &fakeAdapter{}, Concurrency: 4}
	if _, _, err := d.Run(context.Background(), 0, ScenarioSimple); err == nil {
		t.Error("Run(jobs=0) should fail")
	}

	d = &Driver{Adapter: &fakeAdapter{}, Concurrency: 0}
	if _, _, err := d.Run(context.Background(), 10, ScenarioSimple); err == nil {
		t.Error("Run(concurrency=0) should fail")
	}
}
