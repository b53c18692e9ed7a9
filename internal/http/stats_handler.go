package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/internship-exchange/internal/workflow"
)

type statsService interface {
	Summary(ctx context.Context, principal workflow.Principal) (workflow.Summary, error)
}

// StatsHandler serves the administrator dashboard aggregate.
type StatsHandler struct {
	service   statsService
	responder responder
	logger    *slog.Logger
}

func NewStatsHandler(service statsService, logger *slog.Logger) *StatsHandler {
	base := defaultLogger(logger)
	return &StatsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	summary, err := h.service.Summary(r.Context(), principal)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "StatsHandler", "Summary", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "summary failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSummaryDTO(summary))
}
