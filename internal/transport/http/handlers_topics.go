package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mindcast/internal/trends"
	dErrors "mindcast/pkg/domain-errors"
	"mindcast/pkg/platform/httputil"
)

// TopicsHandler exposes topic history and the blocklist.
type TopicsHandler struct {
	history   trends.HistoryStore
	blocklist trends.BlocklistStore
	logger    *slog.Logger
}

// NewTopicsHandler constructs the topics handler.
func NewTopicsHandler(history trends.HistoryStore, blocklist trends.BlocklistStore, logger *slog.Logger) *TopicsHandler {
	return &TopicsHandler{history: history, blocklist: blocklist, logger: logger}
}

// Register mounts the topic routes.
func (h *TopicsHandler) Register(r chi.Router) {
	r.Get("/topics/history", h.listHistory)
	r.Get("/topics/blocklist", h.listBlocklist)
	r.Post("/topics/blocklist", h.addBlocked)
	r.Delete("/topics/blocklist", h.removeBlocked)
}

func (h *TopicsHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	topics, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (h *TopicsHandler) listBlocklist(w http.ResponseWriter, r *http.Request) {
	phrases, err := h.blocklist.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"phrases": phrases})
}

type blocklistRequest struct {
	Phrase string `json:"phrase"`
}

func (h *TopicsHandler) addBlocked(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[blocklistRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Phrase == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "phrase is required"))
		return
	}

	if err := h.blocklist.Add(r.Context(), req.Phrase); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"phrase": req.Phrase})
}

func (h *TopicsHandler) removeBlocked(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[blocklistRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Phrase == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "phrase is required"))
		return
	}

	if err := h.blocklist.Remove(r.Context(), req.Phrase); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
