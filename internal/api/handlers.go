package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bobarin/kobanashi/internal/db"
	"github.com/bobarin/kobanashi/internal/models"
	"github.com/bobarin/kobanashi/internal/queue"
	"github.com/bobarin/kobanashi/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler is the thin job-ledger front door described in SPEC_FULL's
// server-mode section: it persists a run, enqueues it, and reports status.
// All pipeline semantics live in internal/pipeline, not here.
type Handler struct {
	db      *db.DB
	queue   *queue.Queue
	storage *storage.Storage
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Storage) *Handler {
	return &Handler{
		db:      database,
		queue:   q,
		storage: stor,
	}
}

// CreateRun handles POST /v1/runs.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Input == "" {
		respondError(w, http.StatusBadRequest, "input is required")
		return
	}

	run := &models.Run{
		ID:     uuid.New(),
		Input:  req.Input,
		Status: models.RunStatusQueued,
	}
	if req.ConfigOverrides != nil {
		run.ConfigOverrides = models.JSONB(req.ConfigOverrides)
	}
	run.SceneRange = req.SceneRange

	if err := h.db.CreateRun(r.Context(), run); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create run")
		return
	}

	job := &models.Job{
		ID:     uuid.New(),
		RunID:  run.ID,
		Stage:  "dispatch",
		Status: models.JobStatusQueued,
	}
	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	sceneRange := ""
	if run.SceneRange != nil {
		sceneRange = *run.SceneRange
	}
	if err := h.queue.EnqueueGenerateRun(r.Context(), run.ID, run.Input, sceneRange); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue run")
		return
	}

	respondJSON(w, http.StatusCreated, models.CreateRunResponse{
		RunID:  run.ID,
		Status: run.Status,
	})
}

// ListRuns handles GET /v1/runs.
// Query params: status, limit (default 20, max 100), offset.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.db.CountRuns(r.Context(), statusFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count runs")
		return
	}

	runs, err := h.db.ListRuns(r.Context(), statusFilter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}

	summaries := make([]models.RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, models.RunSummary{
			ID:           run.ID,
			Input:        run.Input,
			Status:       run.Status,
			ErrorMessage: run.ErrorMessage,
			CreatedAt:    run.CreatedAt,
			UpdatedAt:    run.UpdatedAt,
		})
	}

	respondJSON(w, http.StatusOK, models.ListRunsResponse{
		Runs:   summaries,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetRun handles GET /v1/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := h.db.GetRun(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}

	response := models.RunResponse{Run: *run}
	if run.OutputAssetID != nil {
		if asset, err := h.db.GetAsset(r.Context(), *run.OutputAssetID); err == nil {
			url := h.storage.GetPublicURL(asset.StoragePath)
			response.OutputVideoURL = &url
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// GetRunJobs handles GET /v1/runs/{id}/jobs — the per-stage debug ledger.
func (h *Handler) GetRunJobs(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	jobs, err := h.db.GetRunJobs(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
