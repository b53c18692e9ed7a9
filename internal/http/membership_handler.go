package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/internship-exchange/internal/workflow"
)

type membershipService interface {
	Submit(ctx context.Context, params workflow.SubmitMembershipParams) (workflow.Membership, error)
	Approve(ctx context.Context, params workflow.ApproveMembershipParams) (workflow.ApprovalResult, error)
	Reject(ctx context.Context, params workflow.RejectMembershipParams) (workflow.Membership, error)
	Get(ctx context.Context, principal workflow.Principal, id string) (workflow.Membership, error)
	List(ctx context.Context, params workflow.ListMembershipsParams) ([]workflow.Membership, error)
	MembershipForUser(ctx context.Context, principal workflow.Principal) (workflow.Membership, error)
}

// MembershipHandler serves registration and review endpoints.
type MembershipHandler struct {
	service   membershipService
	responder responder
	logger    *slog.Logger
}

func NewMembershipHandler(service membershipService, logger *slog.Logger) *MembershipHandler {
	base := defaultLogger(logger)
	return &MembershipHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MembershipHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MembershipHandler", operation, attrs...)
}

// Submit is public: prospective members register without a session.
func (h *MembershipHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req membershipRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Submit", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode membership request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit", "registration_number", req.RegistrationNumber)

	membership, err := h.service.Submit(r.Context(), workflow.SubmitMembershipParams{Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "membership submission failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("membership_id", membership.ID).InfoContext(r.Context(), "membership submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, membershipResponse{Membership: toMembershipDTO(membership)})
}

func (h *MembershipHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := workflow.ParseQuery(r.URL.Query())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "status", query.Status)

	memberships, err := h.service.List(r.Context(), workflow.ListMembershipsParams{Principal: principal, Query: query})
	if err != nil {
		logger.ErrorContext(r.Context(), "membership listing failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "memberships listed", "count", len(memberships))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, membershipListResponse{Memberships: toMembershipDTOs(memberships)})
}

func (h *MembershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	membership, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "membership_id", id).
			ErrorContext(r.Context(), "membership lookup failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, membershipResponse{Membership: toMembershipDTO(membership)})
}

func (h *MembershipHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	membership, err := h.service.MembershipForUser(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "Mine", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "own membership lookup failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, membershipResponse{Membership: toMembershipDTO(membership)})
}

func (h *MembershipHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Approve", "principal_id", principal.UserID, "membership_id", id, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode approval request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Approve", "principal_id", principal.UserID, "membership_id", id)

	result, err := h.service.Approve(r.Context(), workflow.ApproveMembershipParams{
		Principal:    principal,
		MembershipID: id,
		LoginEmail:   req.LoginEmail,
		TempPassword: req.TempPassword,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "membership approval failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "membership approved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, approvalResponse{
		Membership: toMembershipDTO(result.Membership),
		User:       toUserDTO(result.User),
	})
}

func (h *MembershipHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id := pathID(r, "id")
	if id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Reject", "principal_id", principal.UserID, "membership_id", id)

	membership, err := h.service.Reject(r.Context(), workflow.RejectMembershipParams{Principal: principal, MembershipID: id})
	if err != nil {
		logger.ErrorContext(r.Context(), "membership rejection failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "membership rejected")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, membershipResponse{Membership: toMembershipDTO(membership)})
}

type approveRequest struct {
	LoginEmail   string `json:"login_email"`
	TempPassword string `json:"temp_password"`
}

type membershipResponse struct {
	Membership membershipDTO `json:"membership"`
}

type membershipListResponse struct {
	Memberships []membershipDTO `json:"memberships"`
}

type approvalResponse struct {
	Membership membershipDTO `json:"membership"`
	User       userDTO       `json:"user"`
}
