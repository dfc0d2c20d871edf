package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// StartupStatus reports the initialization progress
type StartupStatus struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

const (
	StepDatabase   = "Database connection"
	StepMigrations = "Running migrations"
	StepServices   = "Initializing services"
	StepReady      = "Server ready"
)

type startupTracker struct {
	mu     sync.RWMutex
	status StartupStatus
}

var startupStatus = newStartupStatus()

func newStartupStatus() *startupTracker {
	return &startupTracker{status: StartupStatus{
		Current: "Initializing...",
		Steps: []StartupStep{
			{Name: StepDatabase},
			{Name: StepMigrations},
			{Name: StepServices},
			{Name: StepReady},
		},
	}}
}

// SetCurrentStep updates the current initialization step
func SetCurrentStep(step string) {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()
	startupStatus.status.Current = step
}

// CompleteStep marks a step as completed and updates progress
func CompleteStep(stepName string) {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()

	steps := startupStatus.status.Steps
	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Completed = true
			break
		}
	}

	completed := 0
	for _, step := range steps {
		if step.Completed {
			completed++
		}
	}
	startupStatus.status.Progress = (completed * 100) / len(steps)
}

// MarkReady marks the server as fully initialized
func MarkReady() {
	startupStatus.mu.Lock()
	defer startupStatus.mu.Unlock()
	for i := range startupStatus.status.Steps {
		startupStatus.status.Steps[i].Completed = true
	}
	startupStatus.status.Ready = true
	startupStatus.status.Current = StepReady
	startupStatus.status.Progress = 100
}

// IsReady returns whether the server is fully initialized
func IsReady() bool {
	startupStatus.mu.RLock()
	defer startupStatus.mu.RUnlock()
	return startupStatus.status.Ready
}

func startupSnapshot() StartupStatus {
	startupStatus.mu.RLock()
	defer startupStatus.mu.RUnlock()
	snapshot := startupStatus.status
	snapshot.Steps = append([]StartupStep(nil), snapshot.Steps...)
	return snapshot
}

// StartupGate answers 503 on API routes until MarkReady is called
func StartupGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsReady() && strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Retry-After", "2")
			respondJSON(w, http.StatusServiceUnavailable, startupSnapshot())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Pinger checks a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthResponse struct {
	Status   string        `json:"status"`
	Database string        `json:"database"`
	Startup  StartupStatus `json:"startup"`
}

// Healthz reports startup progress and database reachability
func Healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Database: "ok", Startup: startupSnapshot()}
		status := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		} else if !resp.Startup.Ready {
			resp.Status = "starting"
			status = http.StatusServiceUnavailable
		}

		respondJSON(w, status, resp)
	}
}
