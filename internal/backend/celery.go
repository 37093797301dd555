package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Celery publishes tasks straight onto a Celery Redis broker in the Kombu
// Redis-transport format, so a stock Celery worker consumes them without any
// Go-side SDK. Task names follow the worker registration "benchmark.<scenario>".
type Celery struct {
	rdb   *redis.Client
	queue string
}

func openCelery() *Celery {
	addr := envOr("REDIS_ADDR", "localhost:6379")
	db := 1
	if v := envOr("REDIS_DB", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}
	queue := envOr("CELERY_QUEUE", "celery")
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  submitTimeout,
		WriteTimeout: submitTimeout,
	})
	return &Celery{rdb: rdb, queue: queue}
}

func (c *Celery) Name() string { return "celery" }

func (c *Celery) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return &ConnectionError{Backend: "celery", Cause: err}
	}
	return nil
}

func (c *Celery) Submit(ctx context.Context, job JobPayload) error {
	msg, err := celeryMessage("benchmark."+job.Scenario, c.queue, job)
	if err != nil {
		return &SubmissionError{Backend: "celery", Cause: err}
	}
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()
	if err := c.rdb.LPush(ctx, c.queue, msg).Err(); err != nil {
		return &SubmissionError{Backend: "celery", Cause: err}
	}
	return nil
}

func (c *Celery) Close() error { return c.rdb.Close() }

// celeryMessage builds a protocol-v2 task message as the Kombu Redis
// transport encodes it: a JSON envelope whose body is the base64 of
// [[args], {kwargs}, {embed}].
func celeryMessage(task, routingKey string, arg interface{}) ([]byte, error) {
	body, err := json.Marshal([]interface{}{
		[]interface{}{arg},
		map[string]interface{}{},
		map[string]interface{}{
			"callbacks": nil,
			"errbacks":  nil,
			"chain":     nil,
			"chord":     nil,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal task body: %w", err)
	}

	id := uuid.NewString()
	envelope := map[string]interface{}{
		"body":             base64.StdEncoding.EncodeToString(body),
		"content-encoding": "utf-8",
		"content-type":     "application/json",
		"headers": map[string]interface{}{
			"lang":       "go",
			"task":       task,
			"id":         id,
			"root_id":    id,
			"parent_id":  nil,
			"group":      nil,
			"retries":    0,
			"eta":        nil,
			"expires":    nil,
			"kwargsrepr": "{}",
		},
		"properties": map[string]interface{}{
			"correlation_id": id,
			"delivery_mode":  2,
			"delivery_info": map[string]interface{}{
				"exchange":    "",
				"routing_key": routingKey,
			},
			"priority":      0,
			"body_encoding": "base64",
			"delivery_tag":  uuid.NewString(),
		},
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}
