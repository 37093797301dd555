package bench

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/kitsune-hash/runqy-benchmarks/internal/backend"
)

func testRunner(t *testing.T, fa *fakeAdapter, cfg RunConfig) *Runner {
	t.Helper()
	return &Runner{
		Config:      cfg,
		OutDir:      t.TempDir(),
		OpenBackend: func(string) (backend.Adapter, error) { return fa, nil },
	}
}

func TestRunnerRecordsResult(t *testing.T) {
	fa := &fakeAdapter{name: "stub"}
	cfg := RunConfig{Jobs: 100, Scenario: ScenarioSimple, Concurrency: 10, Backend: "stub"}
	r := testRunner(t, fa, cfg)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if r.State() != StateRecorded {
		t.Errorf("state = %s, want %s", r.State(), StateRecorded)
	}
	if result.Errors != 0 {
		t.Errorf("errors = %d, want 0", result.Errors)
	}
	if result.System != "stub" || result.JobsCount != 100 {
		t.Errorf("record identity = %s/%d", result.System, result.JobsCount)
	}
	if result.ThroughputPerSecond <= 0 {
		t.Errorf("throughput = %v, want > 0", result.ThroughputPerSecond)
	}
	if _, err := os.Stat(r.OutDir + "/" + result.Filename()); err != nil {
		t.Errorf("result file missing: %v", err)
	}
	if !fa.closed.Load() {
		t.Error("adapter was not closed")
	}
}

func TestRunnerAllFailuresStillRecords(t *testing.T) {
	// Submission failures are samples, not run failures.
	fa := &fakeAdapter{name: "stub", failAll: true}
	cfg := RunConfig{Jobs: 25, Scenario: ScenarioSimple, Concurrency: 5, Backend: "stub"}
	r := testRunner(t, fa, cfg)

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Errors != 25 {
		t.Errorf("errors = %d, want 25", result.Errors)
	}
	if _, err := os.Stat(r.OutDir + "/" + result.Filename()); err != nil {
		t.Errorf("result file missing: %v", err)
	}
}

func TestRunnerConfigErrorFailsFast(t *testing.T) {
	fa := &fakeAdapter{name: "stub"}
	opened := false
	r := &Runner{
		Config: RunConfig{Jobs: 0, Scenario: ScenarioSimple, Concurrency: 10, Backend: "stub"},
		OutDir: t.TempDir(),
		OpenBackend: func(string) (backend.Adapter, error) {
			opened = true
			return fa, nil
		},
	}

	_, err := r.Run(context.Background())
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Run() error = %v, want ConfigError", err)
	}
	if opened {
		t.Error("backend must not be opened for an invalid config")
	}
	if fa.submits.Load() != 0 {
		t.Error("no submission may happen for an invalid config")
	}
	assertNoResultFiles(t, r.OutDir)
	if r.State() != StateFailed {
		t.Errorf("state = %s, want %s", r.State(), StateFailed)
	}
}

func TestRunnerZeroConcurrencyFailsFast(t *testing.T) {
	r := testRunner(t, &fakeAdapter{}, RunConfig{Jobs: 10, Scenario: ScenarioSimple, Concurrency: 0, Backend: "stub"})
	var ce *ConfigError
	if _, err := r.Run(context.Background()); !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	assertNoResultFiles(t, r.OutDir)
}

func TestRunnerConnectionFailureWritesNothing(t *testing.T) {
	fa := &fakeAdapter{pingErr: &backend.ConnectionError{Backend: "stub", Cause: errors.New("refused")}}
	r := testRunner(t, fa, RunConfig{Jobs: 10, Scenario: ScenarioSimple, Concurrency: 2, Backend: "stub"})

	_, err := r.Run(context.Background())
	if !backend.IsConnectionError(err) {
		t.Fatalf("error = %v, want connection error", err)
	}
	assertNoResultFiles(t, r.OutDir)
	if !fa.closed.Load() {
		t.Error("adapter must be closed on the failure path too")
	}
}

func TestRunnerRerunOverwrites(t *testing.T) {
	fa := &fakeAdapter{name: "stub"}
	cfg := RunConfig{Jobs: 10, Scenario: ScenarioSimple, Concurrency: 2, Backend: "stub"}
	r := testRunner(t, fa, cfg)

	for i := 0; i < 2; i++ {
		if _, err := r.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error: %v", i+1, err)
		}
	}
	entries, err := os.ReadDir(r.OutDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("result dir has %d files, want 1", len(entries))
	}
}

func assertNoResultFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("result dir should be empty, found %d entries", len(entries))
	}
}
