package bench

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Result is the normalized record every backend run produces. The field set
// and rounding are shared across harness implementations; changing either
// breaks comparability with historical records.
type Result struct {
	System              string  `json:"system"`
	Scenario            string  `json:"scenario"`
	JobsCount           int     `json:"jobs_count"`
	DurationSeconds     float64 `json:"duration_seconds"`
	ThroughputPerSecond float64 `json:"throughput_per_second"`
	LatencyP50MS        float64 `json:"latency_p50_ms"`
	LatencyP95MS        float64 `json:"latency_p95_ms"`
	LatencyP99MS        float64 `json:"latency_p99_ms"`
	LatencyAvgMS        float64 `json:"latency_avg_ms"`
	LatencyMinMS        float64 `json:"latency_min_ms"`
	LatencyMaxMS        float64 `json:"latency_max_ms"`
	Errors              int     `json:"errors"`
	Timestamp           string  `json:"timestamp"`
}

// NewResult assembles the record from run metadata, the aggregate and the
// measured wall-clock duration. Throughput is jobs over wall-clock seconds.
func NewResult(system string, cfg RunConfig, agg Aggregate, elapsed time.Duration, now time.Time) Result {
	duration := elapsed.Seconds()
	throughput := 0.0
	if duration > 0 {
		throughput = float64(cfg.Jobs) / duration
	}
	return Result{
		System:              system,
		Scenario:            string(cfg.Scenario),
		JobsCount:           cfg.Jobs,
		DurationSeconds:     round(duration, 3),
		ThroughputPerSecond: round(throughput, 2),
		LatencyP50MS:        round(agg.P50, 3),
		LatencyP95MS:        round(agg.P95, 3),
		LatencyP99MS:        round(agg.P99, 3),
		LatencyAvgMS:        round(agg.Mean, 3),
		LatencyMinMS:        round(agg.Min, 3),
		LatencyMaxMS:        round(agg.Max, 3),
		Errors:              agg.Errors,
		Timestamp:           now.UTC().Format(time.RFC3339Nano),
	}
}

// Filename is the deterministic per-run file name, so a rerun with the same
// (system, scenario, jobs_count) overwrites rather than accumulates.
func (r Result) Filename() string {
	return fmt.Sprintf("%s_%s_%d.json", r.System, r.Scenario, r.JobsCount)
}

// Write persists the record under dir atomically: the full JSON is staged in
// a temp file and renamed into place, so a reader never observes a partial
// record. Returns the final path.
func (r Result) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, r.Filename())
	tmp, err := os.CreateTemp(dir, r.Filename()+".tmp-")
	if err != nil {
		return "", fmt.Errorf("stage result: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write result: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close result: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publish result: %w", err)
	}
	return path, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
