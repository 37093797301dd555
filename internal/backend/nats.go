package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS publishes jobs to a per-scenario subject. A publish is buffered
// client-side, so every Submit flushes to keep the measured latency an
// honest broker round trip rather than a memcpy.
type NATS struct {
	nc *nats.Conn
}

func openNATS() (*NATS, error) {
	url := envOr("NATS_URL", nats.DefaultURL)
	nc, err := nats.Connect(url, nats.Name("qbench"))
	if err != nil {
		return nil, &ConnectionError{Backend: "nats", Cause: err}
	}
	return &NATS{nc: nc}, nil
}

func (n *NATS) Name() string { return "nats" }

func (n *NATS) Ping(ctx context.Context) error {
	if !n.nc.IsConnected() {
		return &ConnectionError{Backend: "nats", Cause: fmt.Errorf("status %s", n.nc.Status())}
	}
	return nil
}

func (n *NATS) Submit(ctx context.Context, job JobPayload) error {
	data, err := json.Marshal(job)
	if err != nil {
		return &SubmissionError{Backend: "nats", Cause: err}
	}
	if err := n.nc.Publish("benchmark."+job.Scenario, data); err != nil {
		return &SubmissionError{Backend: "nats", Cause: err}
	}
	if err := n.nc.FlushTimeout(submitTimeout); err != nil {
		return &SubmissionError{Backend: "nats", Cause: err}
	}
	return nil
}

func (n *NATS) Close() error {
	n.nc.Close()
	return nil
}
