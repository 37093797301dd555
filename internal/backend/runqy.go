package backend

import (
	"context"
	"time"

	"github.com/kitsune-hash/runqy-benchmarks/pkg/runqy"
)

// Runqy submits jobs over the Runqy HTTP API.
type Runqy struct {
	name   string
	client *runqy.Client
	queue  string
}

func openRunqy() *Runqy {
	url := envOr("RUNQY_URL", "http://localhost:3000")
	key := envOr("RUNQY_API_KEY", "test-api-key-456")
	queue := envOr("RUNQY_QUEUE", "benchmark")
	return NewRunqy("runqy", runqy.New(url, runqy.WithAPIKey(key), runqy.WithTimeout(submitTimeout)), queue)
}

// NewRunqy wraps an existing client. The name becomes the result record's
// system field, which lets the stub backend reuse this shim.
func NewRunqy(name string, client *runqy.Client, queue string) *Runqy {
	return &Runqy{name: name, client: client, queue: queue}
}

func (r *Runqy) Name() string { return r.name }

func (r *Runqy) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.client.Queues(ctx); err != nil {
		return &ConnectionError{Backend: r.name, Cause: err}
	}
	return nil
}

func (r *Runqy) Submit(ctx context.Context, job JobPayload) error {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	if _, err := r.client.Enqueue(ctx, r.queue, job); err != nil {
		return &SubmissionError{Backend: r.name, Cause: err}
	}
	return nil
}

func (r *Runqy) Close() error { return nil }
