// Package backend defines the submission contract the harness drives and the
// per-system shims that implement it.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// submitTimeout bounds a single Submit call across all adapters.
const submitTimeout = 30 * time.Second

// JobPayload is the unit of work sent to a backend. Created per submission
// and discarded after send; the harness never awaits job completion.
type JobPayload struct {
	ID        int64  `json:"id"`
	Scenario  string `json:"scenario"`
	Timestamp int64  `json:"timestamp"`
}

// Adapter performs exactly one unit of enqueue work per Submit call.
//
// Implementations own their connection or pool and must be safe for
// concurrent Submit. No retries: a failed submission is a permanent sample.
type Adapter interface {
	// Name identifies the system under test in result records.
	Name() string
	// Ping verifies the backend is reachable before a run starts.
	Ping(ctx context.Context) error
	// Submit enqueues one job and returns when the backend acknowledges it.
	Submit(ctx context.Context, job JobPayload) error
	Close() error
}

// SubmissionError is a per-job failure: the backend rejected or timed out on
// one submission. It is recorded as a sample, never a run abort.
type SubmissionError struct {
	Backend string
	Cause   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s submit: %v", e.Backend, e.Cause)
}

func (e *SubmissionError) Unwrap() error { return e.Cause }

// ConnectionError is a run-level failure: the backend cannot be reached at
// all. Fatal to the run; no result is persisted.
type ConnectionError struct {
	Backend string
	Cause   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Backend, e.Cause)
}

func (e *ConnectionError) Unwrap() error { return e.Cause }

// IsConnectionError reports whether err is a run-level connection failure.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// Open constructs the adapter for the named backend, reading connection
// parameters from the environment. Known names: runqy, celery, temporal,
// nats, stub.
func Open(name string) (Adapter, error) {
	switch name {
	case "runqy":
		return openRunqy(), nil
	case "celery":
		return openCelery(), nil
	case "temporal":
		return openTemporal()
	case "nats":
		return openNATS()
	case "stub":
		return openStub(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected runqy, celery, temporal, nats, stub)", name)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
