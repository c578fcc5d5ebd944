package workspace

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idres/internal/platform/middleware"
	dErrors "idres/pkg/domain-errors"
	"idres/pkg/platform/httputil"
	"idres/pkg/requestcontext"
)

// SettingsService is what the handler needs from Service.
type SettingsService interface {
	Settings() Settings
	Update(ctx context.Context, u Update) (Settings, error)
}

type Handler struct {
	logger     *slog.Logger
	service    SettingsService
	adminToken string
}

// NewHandler builds the workspace handler. When adminToken is set, writes
// require a matching X-Admin-Token header.
func NewHandler(service SettingsService, logger *slog.Logger, adminToken string) *Handler {
	return &Handler{logger: logger, service: service, adminToken: adminToken}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/workspace", func(r chi.Router) {
		r.Get("/", h.handleGet)
		r.Get("/links", h.handleLinks)
		if h.adminToken != "" {
			r.With(middleware.RequireAdminToken(h.adminToken, h.logger)).Put("/", h.handleUpdate)
		} else {
			r.Put("/", h.handleUpdate)
		}
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Settings().Redacted())
}

func (h *Handler) handleLinks(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Settings().Links())
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var u Update
	if err := httputil.DecodeJSON(r, &u); err != nil {
		h.logger.WarnContext(ctx, "invalid workspace update",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	settings, err := h.service.Update(ctx, u)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to update workspace settings",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update workspace settings"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings.Redacted())
}
