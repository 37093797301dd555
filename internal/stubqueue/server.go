// Package stubqueue is a loopback queue server speaking the Runqy wire
// protocol. It accepts jobs, counts them and throws them away. Tests use it
// as the system under test; cmd/qbench-stub serves it standalone so the
// harness can be exercised without any external broker.
package stubqueue

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
)

// Options tune the stub's behavior for tests.
type Options struct {
	// APIKey, when set, is required as a bearer token on /queue/add.
	APIKey string
	// Delay is slept inside every accept, to simulate broker latency.
	Delay time.Duration
	// FailEvery rejects every Nth submission with a 500, 0 disables.
	FailEvery int
	// FailAll rejects every submission with a 500.
	FailAll bool
}

// Server is the stub queue.
type Server struct {
	opts     Options
	router   chi.Router
	accepted atomic.Int64
	seen     atomic.Int64
}

func New(opts Options) *Server {
	s := &Server{opts: opts}
	r := chi.NewRouter()
	r.Post("/queue/add", s.handleAdd)
	r.Get("/workers/queues", s.handleQueues)
	r.Get("/workers", s.handleWorkers)
	r.Get("/healthz", s.handleHealthz)
	s.router = r
	return s
}

// Handler exposes the stub as an http.Handler for httptest servers.
func (s *Server) Handler() http.Handler { return s.router }

// Accepted reports how many jobs the stub has acknowledged.
func (s *Server) Accepted() int64 { return s.accepted.Load() }

type addRequest struct {
	Queue   string          `json:"queue"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if s.opts.APIKey != "" {
		if r.Header.Get("Authorization") != "Bearer "+s.opts.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Queue == "" {
		writeError(w, http.StatusBadRequest, "queue is required")
		return
	}

	n := s.seen.Add(1)
	if s.opts.FailAll || (s.opts.FailEvery > 0 && n%int64(s.opts.FailEvery) == 0) {
		writeError(w, http.StatusInternalServerError, "injected failure")
		return
	}
	if s.opts.Delay > 0 {
		time.Sleep(s.opts.Delay)
	}

	s.accepted.Add(1)
	writeJSON(w, http.StatusOK, map[string]string{"status": "queued", "queue": req.Queue})
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"queues": []string{"benchmark"}})
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	// The stub consumes nothing, but reporting one worker keeps pre-flight
	// checks written against the real server happy.
	writeJSON(w, http.StatusOK, map[string]int{"count": 1})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
