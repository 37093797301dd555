package bench

import (
	"errors"
	"testing"
)

func samplesFrom(lats ...float64) []LatencySample {
	s := make([]LatencySample, len(lats))
	for i, l := range lats {
		s[i] = LatencySample{LatencyMS: l}
	}
	return s
}

func TestPercentileNearestRank(t *testing.T) {
	agg, err := AggregateSamples(samplesFrom(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("AggregateSamples() error: %v", err)
	}
	if agg.P50 != 3 {
		t.Errorf("p50 = %v, want 3", agg.P50)
	}
	if agg.P95 != 5 {
		t.Errorf("p95 = %v, want 5", agg.P95)
	}
	if agg.P99 != 5 {
		t.Errorf("p99 = %v, want 5", agg.P99)
	}
}

func TestPercentileClampsAtFull(t *testing.T) {
	// index floor(n*100/100) == n clamps to n-1, so p100 is the max.
	sorted := []float64{1, 2, 3}
	if got := percentile(sorted, 100); got != 3 {
		t.Errorf("percentile(100) = %v, want 3", got)
	}
	if got := percentile(sorted, 0); got != 1 {
		t.Errorf("percentile(0) = %v, want 1", got)
	}
}

func TestPercentileSingleSample(t *testing.T) {
	sorted := []float64{7.5}
	for _, p := range []float64{0, 50, 95, 99, 100} {
		if got := percentile(sorted, p); got != 7.5 {
			t.Errorf("percentile(%v) = %v, want 7.5", p, got)
		}
	}
}

func TestAggregateOrderingInvariant(t *testing.T) {
	agg, err := AggregateSamples(samplesFrom(12.5, 0.7, 88.1, 3.2, 41.0, 5.5, 2.9, 150.3, 0.9, 7.7))
	if err != nil {
		t.Fatalf("AggregateSamples() error: %v", err)
	}
	if agg.Min > agg.P50 || agg.P50 > agg.P95 || agg.P95 > agg.P99 || agg.P99 > agg.Max {
		t.Errorf("ordering violated: min=%v p50=%v p95=%v p99=%v max=%v",
			agg.Min, agg.P50, agg.P95, agg.P99, agg.Max)
	}
}

func TestAggregateMeanIncludesFailures(t *testing.T) {
	samples := []LatencySample{
		{LatencyMS: 10},
		{LatencyMS: 30, Err: "connection refused"},
	}
	agg, err := AggregateSamples(samples)
	if err != nil {
		t.Fatalf("AggregateSamples() error: %v", err)
	}
	if agg.Mean != 20 {
		t.Errorf("mean = %v, want 20 (failure latency must count)", agg.Mean)
	}
	if agg.Errors != 1 {
		t.Errorf("errors = %d, want 1", agg.Errors)
	}
	if agg.Max != 30 {
		t.Errorf("max = %v, want 30", agg.Max)
	}
}

func TestAggregateEmpty(t *testing.T) {
	_, err := AggregateSamples(nil)
	if !errors.Is(err, ErrNoSamples) {
		t.Fatalf("AggregateSamples(nil) error = %v, want ErrNoSamples", err)
	}
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	samples := samplesFrom(5, 1, 3)
	if _, err := AggregateSamples(samples); err != nil {
		t.Fatalf("AggregateSamples() error: %v", err)
	}
	if samples[0].LatencyMS != 5 || samples[1].LatencyMS != 1 || samples[2].LatencyMS != 3 {
		t.Error("input slice was reordered; aggregation must copy before sorting")
	}
}
