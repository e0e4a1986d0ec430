// Package handler is the thin HTTP layer over the directory service. It
// delegates to the service and never embeds orchestration logic.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kiril6/users-directory/internal/directory"
	"github.com/kiril6/users-directory/internal/directory/models"
)

type Handler struct {
	svc    *directory.Service
	logger *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func New(svc *directory.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewRouter wires the directory endpoints. State reads are synchronous;
// inputs (search text, criterion, load-more, reset) are accepted with 202 and
// take effect through the service's streams.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.handleHealth)
	r.Route("/directory", func(r chi.Router) {
		r.Get("/", h.handleState)
		r.Post("/search", h.handleSearch)
		r.Post("/criterion", h.handleCriterion)
		r.Post("/load-more", h.handleLoadMore)
		r.Post("/reset", h.handleReset)
	})
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State().Get())
}

type searchRequest struct {
	Q string `json:"q"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("rejected search payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid search payload")
		return
	}
	h.svc.SetSearchInput(req.Q)
	w.WriteHeader(http.StatusAccepted)
}

type criterionRequest struct {
	Criterion string `json:"criterion"`
}

func (h *Handler) handleCriterion(w http.ResponseWriter, r *http.Request) {
	var req criterionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("rejected criterion payload", "error", err)
		writeError(w, http.StatusBadRequest, "invalid criterion payload")
		return
	}
	criterion, err := models.ParseCriterion(req.Criterion)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.svc.SetCriterion(criterion)
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleLoadMore(w http.ResponseWriter, _ *http.Request) {
	h.svc.LoadMore()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleReset(w http.ResponseWriter, _ *http.Request) {
	h.svc.Reset()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
