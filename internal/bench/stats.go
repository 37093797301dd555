package bench

import (
	"errors"
	"slices"
)

// ErrNoSamples is returned when aggregation receives zero samples. A run
// with jobs_count >= 1 always produces at least one sample, so hitting this
// is an internal invariant violation.
var ErrNoSamples = errors.New("no latency samples collected")

// LatencySample is one measured submission attempt. Err is empty on success;
// failures keep their latency so the cost of failure stays in the stats.
type LatencySample struct {
	LatencyMS float64
	Err       string
}

// Aggregate is the sufficient statistic of a run's samples. Values are in
// milliseconds at full float precision; rounding happens at presentation.
type Aggregate struct {
	P50    float64
	P95    float64
	P99    float64
	Mean   float64
	Min    float64
	Max    float64
	Errors int
}

// AggregateSamples reduces samples to latency statistics. Failed submissions
// are included in every latency figure and additionally counted in Errors.
func AggregateSamples(samples []LatencySample) (Aggregate, error) {
	if len(samples) == 0 {
		return Aggregate{}, ErrNoSamples
	}

	lats := make([]float64, len(samples))
	errs := 0
	sum := 0.0
	for i, s := range samples {
		lats[i] = s.LatencyMS
		sum += s.LatencyMS
		if s.Err != "" {
			errs++
		}
	}
	slices.Sort(lats)

	return Aggregate{
		P50:    percentile(lats, 50),
		P95:    percentile(lats, 95),
		P99:    percentile(lats, 99),
		Mean:   sum / float64(len(lats)),
		Min:    lats[0],
		Max:    lats[len(lats)-1],
		Errors: errs,
	}, nil
}

// percentile is the nearest-rank method used by every implementation of this
// harness: index floor(n*p/100) into the ascending-sorted slice, clamped to
// the last element. The clamp also defines p=100. Results must match other
// implementations bit for bit, so do not switch to interpolation.
func percentile(sorted []float64, p float64) float64 {
	idx := int(float64(len(sorted)) * p / 100)
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
