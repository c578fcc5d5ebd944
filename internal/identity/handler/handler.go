package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"idres/internal/identity/models"
	dErrors "idres/pkg/domain-errors"
	"idres/pkg/platform/httputil"
	"idres/pkg/requestcontext"
)

// Service defines the identity configuration operations the handler needs.
type Service interface {
	Config() models.State
	AddCustom(ctx context.Context, name string) (models.State, error)
	Remove(ctx context.Context, index int) (models.State, error)
	Reorder(ctx context.Context, src, dst int) (models.State, error)
	ToggleEnabled(ctx context.Context, index int) (models.State, error)
	SetMatchLimit(ctx context.Context, index, limit int) (models.State, error)
	SetMatchFrequency(ctx context.Context, index int, f models.MatchFrequency) (models.State, error)
	Restore(ctx context.Context, id string) (models.State, error)
	RestoreDefaults(ctx context.Context) (models.State, error)
}

// Handler serves the identity configuration API.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register mounts the routes under /api/identity.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/identity", func(r chi.Router) {
		r.Get("/catalog", h.handleCatalog)
		r.Get("/config", h.handleGetConfig)
		r.Post("/fields", h.handleAddField)
		r.Post("/fields/reorder", h.handleReorder)
		r.Delete("/fields/{index}", h.handleRemove)
		r.Post("/fields/{index}/toggle", h.handleToggle)
		r.Put("/fields/{index}/limit", h.handleSetLimit)
		r.Put("/fields/{index}/frequency", h.handleSetFrequency)
		r.Post("/deleted/{id}/restore", h.handleRestore)
		r.Post("/restore-defaults", h.handleRestoreDefaults)
	})
}

func (h *Handler) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ToCatalogResponse())
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, ToConfigResponse(h.service.Config()))
}

func (h *Handler) handleAddField(w http.ResponseWriter, r *http.Request) {
	var req AddFieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.AddCustom(r.Context(), req.Name)
	h.respond(w, r, "add field", st, err)
}

func (h *Handler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.Reorder(r.Context(), req.Source, req.Target)
	h.respond(w, r, "reorder fields", st, err)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	st, err := h.service.Remove(r.Context(), index)
	h.respond(w, r, "remove field", st, err)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	st, err := h.service.ToggleEnabled(r.Context(), index)
	h.respond(w, r, "toggle field", st, err)
}

func (h *Handler) handleSetLimit(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	var req SetLimitRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := h.service.SetMatchLimit(r.Context(), index, req.Limit)
	h.respond(w, r, "set match limit", st, err)
}

func (h *Handler) handleSetFrequency(w http.ResponseWriter, r *http.Request) {
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	var req SetFrequencyRequest
	if !h.decode(w, r, &req) {
		return
	}
	freq, err := models.ParseMatchFrequency(req.Frequency)
	if err != nil {
		h.fail(w, r, "set match frequency", err)
		return
	}
	st, err := h.service.SetMatchFrequency(r.Context(), index, freq)
	h.respond(w, r, "set match frequency", st, err)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Restore(r.Context(), chi.URLParam(r, "id"))
	h.respond(w, r, "restore field", st, err)
}

func (h *Handler) handleRestoreDefaults(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.RestoreDefaults(r.Context())
	h.respond(w, r, "restore defaults", st, err)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.fail(w, r, "parse index", dErrors.New(dErrors.CodeBadRequest, "index must be an integer"))
		return 0, false
	}
	return index, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httputil.DecodeJSON(r, v); err != nil {
		h.fail(w, r, "decode request", err)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, action string, st models.State, err error) {
	if err != nil {
		h.fail(w, r, action, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ToConfigResponse(st))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, action+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, action+" rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
