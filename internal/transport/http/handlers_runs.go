package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mindcast/internal/pipeline"
	"mindcast/pkg/domain"
	dErrors "mindcast/pkg/domain-errors"
	"mindcast/pkg/platform/httputil"
	"mindcast/pkg/requestcontext"
)

// PipelineService is the slice of the pipeline the runs handler needs.
type PipelineService interface {
	Execute(ctx context.Context, date time.Time, force bool) (*pipeline.Run, error)
	Resume(ctx context.Context, id domain.RunID) (*pipeline.Run, error)
}

// RunsHandler exposes pipeline runs over the admin API.
type RunsHandler struct {
	service PipelineService
	store   pipeline.Store
	logger  *slog.Logger
}

// NewRunsHandler constructs the runs handler.
func NewRunsHandler(service PipelineService, store pipeline.Store, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{service: service, store: store, logger: logger}
}

// Register mounts the run routes.
func (h *RunsHandler) Register(r chi.Router) {
	r.Post("/runs", h.execute)
	r.Post("/runs/{id}/resume", h.resume)
	r.Get("/runs", h.list)
	r.Get("/runs/{id}", h.get)
}

type executeRequest struct {
	Date  string `json:"date,omitempty"`
	Force bool   `json:"force,omitempty"`
}

// execute runs the full pipeline synchronously and returns the finished
// run. Stage timeouts bound how long this can block.
func (h *RunsHandler) execute(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[executeRequest](w, r, h.logger)
	if !ok {
		return
	}

	date := requestcontext.Now(r.Context())
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "date must be YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	run, err := h.service.Execute(r.Context(), date, req.Force)
	if err != nil {
		// A failed run was still persisted and is resumable; return it so
		// the caller can see which stage broke.
		if run != nil {
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, run)
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, run)
}

func (h *RunsHandler) resume(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	run, err := h.service.Resume(r.Context(), id)
	if err != nil {
		if run != nil {
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, run)
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

func (h *RunsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	runs, err := h.store.List(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *RunsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	run, err := h.store.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}
