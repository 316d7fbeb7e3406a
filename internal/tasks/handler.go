package tasks

import (
	"encoding/json"
	"log"
	"net/http"
)

// Handler exposes manual task triggers. Single-worker deployments run
// without the scheduler and drive maintenance through these endpoints.
type Handler struct {
	runner           *Runner
	schedulerEnabled bool
}

// NewHandler returns a configured Handler.
func NewHandler(runner *Runner, schedulerEnabled bool) *Handler {
	return &Handler{runner: runner, schedulerEnabled: schedulerEnabled}
}

// RegisterRoutes mounts the task trigger routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/tasks/status", h.handleStatus)
	mux.HandleFunc("/api/tasks/refresh-jobs", h.handleRefresh)
	mux.HandleFunc("/api/tasks/fetch-new-jobs", h.handleFetch)
	mux.HandleFunc("/api/tasks/cleanup-jobs", h.handleCleanup)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		taskError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	taskOK(w, map[string]any{
		"scheduler_enabled": h.schedulerEnabled,
		"tasks":             []string{"refresh-jobs", "fetch-new-jobs", "cleanup-jobs"},
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		taskError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := h.runner.RefreshJobs(r.Context())
	if err != nil {
		log.Printf("[tasks] manual refresh failed: %v", err)
		taskError(w, "refresh failed", http.StatusInternalServerError)
		return
	}
	taskOK(w, map[string]any{"success": true, "task": "refresh-jobs", "result": res})
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		taskError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Keywords      []string `json:"keywords"`
		MaxPerKeyword int      `json:"max_per_keyword"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	res, err := h.runner.FetchNewJobs(r.Context(), body.Keywords, body.MaxPerKeyword)
	if err != nil {
		log.Printf("[tasks] manual fetch failed: %v", err)
		taskError(w, "fetch failed", http.StatusInternalServerError)
		return
	}
	taskOK(w, map[string]any{"success": true, "task": "fetch-new-jobs", "result": res})
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		taskError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Days int `json:"days"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	res, err := h.runner.CleanupJobs(r.Context(), body.Days)
	if err != nil {
		log.Printf("[tasks] manual cleanup failed: %v", err)
		taskError(w, "cleanup failed", http.StatusInternalServerError)
		return
	}
	taskOK(w, map[string]any{"success": true, "task": "cleanup-jobs", "result": res})
}

func taskOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func taskError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
