package profile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "idres/pkg/domain-errors"
	"idres/pkg/platform/httputil"
	"idres/pkg/requestcontext"
)

// Fetcher is the client surface the handler uses.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string, kind Kind) (json.RawMessage, error)
}

type Handler struct {
	logger  *slog.Logger
	fetcher Fetcher
}

func NewHandler(fetcher Fetcher, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, fetcher: fetcher}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/profiles/{identifier}/{kind}", h.handleFetch)
}

func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	kind, err := ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	identifier := chi.URLParam(r, "identifier")

	body, err := h.fetcher.Fetch(ctx, identifier, kind)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "profile fetch failed",
				"request_id", requestID,
				"kind", kind,
				"error", err,
			)
		} else {
			h.logger.WarnContext(ctx, "profile fetch rejected",
				"request_id", requestID,
				"kind", kind,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
