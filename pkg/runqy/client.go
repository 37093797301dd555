package runqy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin HTTP wrapper for the Runqy API.
type Client struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.APIKey = key }
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// New creates a new Runqy client.
func New(url string, opts ...Option) *Client {
	c := &Client{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnqueueResult is the response from enqueuing a job.
type EnqueueResult struct {
	JobID  string `json:"job_id,omitempty"`
	Status string `json:"status,omitempty"`
}

// Enqueue submits one job to the named queue.
func (c *Client) Enqueue(ctx context.Context, queue string, payload interface{}) (*EnqueueResult, error) {
	body := map[string]interface{}{
		"queue":   queue,
		"payload": payload,
	}
	var result EnqueueResult
	if err := c.post(ctx, "/queue/add", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// QueueList is the response from listing worker queues.
type QueueList struct {
	Queues []string `json:"queues"`
}

// Queues lists the queues known to the server. Used as a readiness probe.
func (c *Client) Queues(ctx context.Context) (*QueueList, error) {
	var result QueueList
	if err := c.get(ctx, "/workers/queues", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WorkerCount is the response from listing connected workers.
type WorkerCount struct {
	Count int `json:"count"`
}

// Workers reports how many workers are connected.
func (c *Client) Workers(ctx context.Context) (*WorkerCount, error) {
	var result WorkerCount
	if err := c.get(ctx, "/workers", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, "GET", path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.doRequest(ctx, "POST", path, body, result)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.Unmarshal(data, &apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
