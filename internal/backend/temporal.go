package backend

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
)

// Temporal starts one SimpleWorkflow per submission on the benchmark task
// queue. Submission is acknowledged when the start call returns; the harness
// never awaits workflow completion.
type Temporal struct {
	c         client.Client
	taskQueue string
}

func openTemporal() (*Temporal, error) {
	hostPort := envOr("TEMPORAL_HOSTPORT", "localhost:7233")
	c, err := client.Dial(client.Options{HostPort: hostPort})
	if err != nil {
		return nil, &ConnectionError{Backend: "temporal", Cause: err}
	}
	return &Temporal{
		c:         c,
		taskQueue: envOr("TEMPORAL_TASK_QUEUE", "benchmark-queue"),
	}, nil
}

func (t *Temporal) Name() string { return "temporal" }

func (t *Temporal) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := t.c.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return &ConnectionError{Backend: "temporal", Cause: err}
	}
	return nil
}

func (t *Temporal) Submit(ctx context.Context, job JobPayload) error {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	opts := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("bench-%d-%d", job.ID, time.Now().UnixNano()),
		TaskQueue: t.taskQueue,
	}
	if _, err := t.c.ExecuteWorkflow(ctx, opts, "SimpleWorkflow", job); err != nil {
		return &SubmissionError{Backend: "temporal", Cause: err}
	}
	return nil
}

func (t *Temporal) Close() error {
	t.c.Close()
	return nil
}
