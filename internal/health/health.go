// Package health provides HTTP health check endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status represents the health check response.
type Status struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Version   string           `json:"version,omitempty"`
	Timestamp string           `json:"timestamp"`
}

// Check represents an individual health check.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// CheckFunc is a function that performs a health check.
type CheckFunc func(ctx context.Context) (bool, string)

// Registry holds named checks and serves /health, /ready and /live.
type Registry struct {
	version string
	timeout time.Duration
	checks  map[string]CheckFunc
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(version string) *Registry {
	return &Registry{
		version: version,
		timeout: 5 * time.Second,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck registers a health check function.
func (r *Registry) RegisterCheck(name string, check CheckFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks[name] = check
}

// Mount adds the probe routes to mux.
func (r *Registry) Mount(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", r.handleHealth)
	mux.HandleFunc("GET /ready", r.handleReady)
	mux.HandleFunc("GET /live", r.handleLive)
}

// Run evaluates every check.
func (r *Registry) Run(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	r.mu.RLock()
	names := make([]string, 0, len(r.checks))
	for name := range r.checks {
		names = append(names, name)
	}
	checks := make(map[string]CheckFunc, len(r.checks))
	for k, v := range r.checks {
		checks[k] = v
	}
	r.mu.RUnlock()
	sort.Strings(names)

	status := Status{
		Status:    "ok",
		Checks:    make(map[string]Check, len(names)),
		Version:   r.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, name := range names {
		healthy, msg := checks[name](ctx)
		status.Checks[name] = Check{Healthy: healthy, Message: msg}
		if !healthy {
			status.Status = "degraded"
		}
	}

	return status
}

func (r *Registry) handleHealth(w http.ResponseWriter, req *http.Request) {
	status := r.Run(req.Context())

	w.Header().Set("Content-Type", "application/json")
	if status.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(status)
}

func (r *Registry) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.Run(req.Context()).Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// handleLive returns whether the service is alive (simple liveness probe).
func (r *Registry) handleLive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
