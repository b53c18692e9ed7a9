package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/internship-exchange/internal/workflow"
)

type applicationService interface {
	Apply(ctx context.Context, params workflow.ApplyParams) (workflow.Application, error)
	UpdateStatus(ctx context.Context, params workflow.UpdateApplicationStatusParams) (workflow.Application, error)
	ListByMembership(ctx context.Context, principal workflow.Principal, membershipID string) (workflow.MembershipApplications, error)
	List(ctx context.Context, params workflow.ListApplicationsParams) ([]workflow.ApplicationDetail, error)
	ListMine(ctx context.Context, principal workflow.Principal) ([]workflow.ApplicationDetail, error)
}

type ApplicationHandler struct {
	service   applicationService
	responder responder
	logger    *slog.Logger
}

func NewApplicationHandler(service applicationService, logger *slog.Logger) *ApplicationHandler {
	base := defaultLogger(logger)
	return &ApplicationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ApplicationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ApplicationHandler", operation, attrs...)
}

// Apply records an application for the caller's own membership.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Apply", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode application request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Apply", "principal_id", principal.UserID, "offer_id", req.OfferID)

	application, err := h.service.Apply(r.Context(), workflow.ApplyParams{Principal: principal, OfferID: req.OfferID})
	if err != nil {
		logger.ErrorContext(r.Context(), "application failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("application_id", application.ID).InfoContext(r.Context(), "application submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, applicationResponse{Application: toApplicationDTO(application)})
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	applicationID := pathID(r, "id")
	if applicationID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "application_id", applicationID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode status update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "application_id", applicationID, "status", req.Status)

	application, err := h.service.UpdateStatus(r.Context(), workflow.UpdateApplicationStatusParams{
		Principal:       principal,
		ApplicationID:   applicationID,
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "application status update failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "application status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationResponse{Application: toApplicationDTO(application)})
}

func (h *ApplicationHandler) ListByMembership(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	membershipID := pathID(r, "id")
	if membershipID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	result, err := h.service.ListByMembership(r.Context(), principal, membershipID)
	if err != nil {
		h.log(r.Context(), "ListByMembership", "principal_id", principal.UserID, "membership_id", membershipID).
			ErrorContext(r.Context(), "membership applications lookup failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	apps := make([]applicationDTO, 0, len(result.Applications))
	for _, app := range result.Applications {
		apps = append(apps, toApplicationDTO(app))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, membershipApplicationsResponse{
		Membership:   toMembershipDTO(result.Membership),
		Applications: apps,
		Stats:        toApplicationStatsDTO(result.Stats),
	})
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := workflow.ParseQuery(r.URL.Query())

	details, err := h.service.List(r.Context(), workflow.ListApplicationsParams{Principal: principal, Query: query})
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "application listing failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationListResponse{Applications: toApplicationDetailDTOs(details)})
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	details, err := h.service.ListMine(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListMine", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "own application listing failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, applicationListResponse{Applications: toApplicationDetailDTOs(details)})
}

type applyRequest struct {
	OfferID string `json:"offer_id"`
}

type statusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type applicationResponse struct {
	Application applicationDTO `json:"application"`
}

type applicationListResponse struct {
	Applications []applicationDetailDTO `json:"applications"`
}

type membershipApplicationsResponse struct {
	Membership   membershipDTO       `json:"membership"`
	Applications []applicationDTO    `json:"applications"`
	Stats        applicationStatsDTO `json:"stats"`
}
