package bench

import (
	"context"
	"time"

	"github.com/kitsune-hash/runqy-benchmarks/internal/backend"
)

// timedSubmit wraps exactly one Submit call in monotonic timestamps. The
// elapsed time is kept even when the call fails: a refused connection has a
// cost, and that cost belongs in the distribution.
func timedSubmit(ctx context.Context, a backend.Adapter, job backend.JobPayload) LatencySample {
	start := time.Now()
	err := a.Submit(ctx, job)
	lat := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		return LatencySample{LatencyMS: lat, Err: err.Error()}
	}
	return LatencySample{LatencyMS: lat}
}
