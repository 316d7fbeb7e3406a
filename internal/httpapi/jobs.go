package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"jobpulse/search-service/internal/jobstore"
)

const defaultListPageSize = 20

// ─── Job detail / apply dispatch ─────────────────────────────────────────────

// handleJobAction handles GET /api/jobs/{id} and POST /api/jobs/{id}/apply.
func (h *Handler) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// Parse /api/jobs/{id}[/{action}]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 3:
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.jobDetail(w, r, parts[2])
	case len(parts) == 4 && parts[3] == "apply":
		if r.Method != http.MethodPost {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.applyJob(w, r, parts[2])
	default:
		jsonError(w, "invalid path", http.StatusNotFound)
	}
}

func (h *Handler) jobDetail(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "job": job})
}

// ─── Saved jobs ──────────────────────────────────────────────────────────────

func (h *Handler) handleSaveJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body struct {
		JobID  string `json:"job_id"`
		Notes  string `json:"notes"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.JobID == "" {
		jsonError(w, "body must contain job_id", http.StatusBadRequest)
		return
	}

	status := jobstore.StatusInterested
	if body.Status != "" {
		parsed, err := jobstore.ParseStatus(body.Status)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		status = parsed
	}

	action, saved, err := h.jobs.ToggleSave(r.Context(), userID, body.JobID, body.Notes, status)
	if err != nil {
		mapStoreError(w, err)
		return
	}

	resp := map[string]any{"success": true, "action": action}
	if action == "saved" {
		resp["message"] = "job saved"
		resp["saved_job"] = saved
	} else {
		resp["message"] = "job removed from saved list"
	}
	jsonOK(w, resp)
}

func (h *Handler) handleSavedJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	page, pageSize := listParams(r)
	status := r.URL.Query().Get("status")

	saved, total, err := h.jobs.ListSaved(r.Context(), userID, status, page, pageSize)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	jsonOK(w, map[string]any{
		"success":    true,
		"saved_jobs": saved,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// ─── Applications ────────────────────────────────────────────────────────────

func (h *Handler) applyJob(w http.ResponseWriter, r *http.Request, jobID string) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body struct {
		CoverLetter string `json:"cover_letter"`
		ResumeURL   string `json:"resume_url"`
		Notes       string `json:"notes"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	app, err := h.jobs.Apply(r.Context(), userID, jobID, body.CoverLetter, body.ResumeURL, body.Notes)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	jsonOK(w, map[string]any{
		"success":     true,
		"message":     "application submitted",
		"application": app,
	})
}

func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	page, pageSize := listParams(r)
	status := r.URL.Query().Get("status")

	apps, total, err := h.jobs.ListApplications(r.Context(), userID, status, page, pageSize)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	jsonOK(w, map[string]any{
		"success":      true,
		"applications": apps,
		"pagination":   paginationMeta(page, pageSize, total),
	})
}

// ─── Search history ──────────────────────────────────────────────────────────

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	history, err := h.jobs.RecentSearches(r.Context(), userID, limit)
	if err != nil {
		mapStoreError(w, err)
		return
	}
	jsonOK(w, map[string]any{"success": true, "searches": history})
}

// ─── List helpers ────────────────────────────────────────────────────────────

func listParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, defaultListPageSize
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			page = v
		}
	}
	if s := r.URL.Query().Get("per_page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize
}

func paginationMeta(page, pageSize, total int) map[string]any {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return map[string]any{
		"page":        page,
		"per_page":    pageSize,
		"total":       total,
		"total_pages": totalPages,
	}
}
