// Package httpapi implements the JSON endpoints of the search service.
//
// Authenticated routes expect an x-user-id header forwarded by the gateway.
//
// Routes:
//
//	POST /api/search/jobs       → job search (augmented + classified)
//	POST /api/search/general    → general web search
//	POST /api/cache/clear       → drop every cache entry
//	GET  /api/cache/stats       → backend type + entry count
//	GET  /api/jobs/{id}         → job detail
//	POST /api/jobs/save         → toggle save/unsave for a job
//	GET  /api/jobs/saved        → list saved jobs
//	POST /api/jobs/{id}/apply   → submit an application
//	GET  /api/applications      → list applications
//	GET  /api/history           → recent searches
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"

	"jobpulse/search-service/internal/cache"
	"jobpulse/search-service/internal/jobstore"
	"jobpulse/search-service/internal/model"
	"jobpulse/search-service/internal/search"
)

// SearchService is the aggregator surface the handlers depend on.
type SearchService interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

// JobStore is the persistence surface the job/history handlers depend on.
type JobStore interface {
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ToggleSave(ctx context.Context, userID, jobID, notes string, status jobstore.Status) (string, *model.SavedJob, error)
	ListSaved(ctx context.Context, userID, status string, page, pageSize int) ([]model.SavedJob, int, error)
	Apply(ctx context.Context, userID, jobID, coverLetter, resumeURL, notes string) (*model.Application, error)
	ListApplications(ctx context.Context, userID, status string, page, pageSize int) ([]model.Application, int, error)
	LogSearch(ctx context.Context, userID, query string, f model.Filters, resultCount int) error
	RecentSearches(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error)
}

// Handler holds shared dependencies.
type Handler struct {
	searcher SearchService
	cache    cache.Store
	jobs     JobStore
}

// NewHandler returns a configured Handler.
func NewHandler(searcher SearchService, cacheStore cache.Store, jobs JobStore) *Handler {
	return &Handler{searcher: searcher, cache: cacheStore, jobs: jobs}
}

// RegisterRoutes mounts all API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/search/jobs", h.handleSearchJobs)
	mux.HandleFunc("/api/search/general", h.handleSearchGeneral)
	mux.HandleFunc("/api/cache/clear", h.handleCacheClear)
	mux.HandleFunc("/api/cache/stats", h.handleCacheStats)
	mux.HandleFunc("/api/jobs/save", h.handleSaveJob)
	mux.HandleFunc("/api/jobs/saved", h.handleSavedJobs)
	mux.HandleFunc("/api/jobs/", h.handleJobAction)
	mux.HandleFunc("/api/applications", h.handleApplications)
	mux.HandleFunc("/api/history", h.handleHistory)
}

// ─── Search endpoints ─────────────────────────────────────────────────────────

// searchBody is the request body shared by both search endpoints.
type searchBody struct {
	Query        string `json:"query"`
	Page         int    `json:"page"`
	JobType      string `json:"job_type"`
	Location     string `json:"location"`
	Experience   string `json:"experience"`
	Remote       bool   `json:"remote"`
	SalaryMin    *int   `json:"salary_min"`
	SalaryMax    *int   `json:"salary_max"`
	ForceRefresh bool   `json:"force_refresh"`
}

func (h *Handler) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, model.CategoryJobs)
}

func (h *Handler) handleSearchGeneral(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, model.CategoryGeneral)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, category model.Category) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.Query == "" {
		jsonError(w, "please enter a search query", http.StatusBadRequest)
		return
	}
	if body.Page < 1 {
		body.Page = 1
	}

	filters := model.Filters{
		Location:   body.Location,
		JobType:    body.JobType,
		Experience: body.Experience,
		Remote:     body.Remote,
		SalaryMin:  body.SalaryMin,
		SalaryMax:  body.SalaryMax,
	}

	res, err := h.searcher.Search(r.Context(), search.Request{
		Query:        body.Query,
		Category:     category,
		Page:         body.Page,
		Filters:      filters,
		ForceRefresh: body.ForceRefresh,
	})
	if err != nil {
		log.Printf("[httpapi] search %q failed: %v", body.Query, err)
		jsonError(w, "search failed, please try again", http.StatusInternalServerError)
		return
	}

	// Log history for identified users (non-fatal, append-only).
	if userID := r.Header.Get("x-user-id"); userID != "" {
		if err := h.jobs.LogSearch(r.Context(), userID, body.Query, filters, res.Total); err != nil {
			slog.Warn("search history insert failed", "user", userID, "err", err)
		}
	}

	jsonOK(w, map[string]any{
		"success":          true,
		"query":            body.Query,
		"results":          res.Results,
		"total":            res.Total,
		"total_fetched":    res.TotalFetched,
		"page":             res.Page,
		"total_pages":      res.TotalPages,
		"results_per_page": res.PerPage,
		"has_next":         res.HasNext,
		"has_prev":         res.HasPrev,
		"cached":           res.Cached,
	})
}

// ─── Cache admin ──────────────────────────────────────────────────────────────

func (h *Handler) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.cache.Clear(r.Context()); err != nil {
		log.Printf("[httpapi] cache clear failed: %v", err)
		jsonError(w, "cache clear failed", http.StatusInternalServerError)
		return
	}

	_, backend := h.cache.Stats(r.Context())
	jsonOK(w, map[string]any{
		"success":    true,
		"message":    "cache cleared",
		"cache_type": backend,
	})
}

func (h *Handler) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, backend := h.cache.Stats(r.Context())
	jsonOK(w, map[string]any{
		"cache_type":  backend,
		"total_items": count,
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// mapStoreError translates persistence sentinels to HTTP errors.
func mapStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobstore.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, jobstore.ErrAlreadyApplied):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("[httpapi] database error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
	}
}
