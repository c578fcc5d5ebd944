package export

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "idres/pkg/domain-errors"
	"idres/pkg/platform/httputil"
	"idres/pkg/requestcontext"
)

// Exporter is the service surface used by the handler.
type Exporter interface {
	Export(ctx context.Context, req Request) (Result, error)
	Call(ctx context.Context, to string) (string, error)
}

type Handler struct {
	logger  *slog.Logger
	service Exporter
}

func NewHandler(service Exporter, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/export", h.handleExport)
	r.Post("/api/notify/call", h.handleCall)
}

type CallRequest struct {
	To string `json:"to"`
}

type CallResponse struct {
	CallSID string `json:"call_sid"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid export request", err)
		return
	}
	result, err := h.service.Export(ctx, req)
	if err != nil {
		h.fail(ctx, w, "export failed", err)
		return
	}
	if result.Destination == DestinationDownload {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.CSV)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CallRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, "invalid call request", err)
		return
	}
	sid, err := h.service.Call(ctx, req.To)
	if err != nil {
		h.fail(ctx, w, "tutorial call failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, CallResponse{CallSID: sid})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
