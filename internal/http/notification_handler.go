package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/internship-exchange/internal/workflow"
)

type notificationService interface {
	Send(ctx context.Context, params workflow.SendNotificationParams) (workflow.Notification, error)
	ListForUser(ctx context.Context, principal workflow.Principal) ([]workflow.Notification, error)
	List(ctx context.Context, principal workflow.Principal) ([]workflow.Notification, error)
}

type NotificationHandler struct {
	service   notificationService
	responder responder
	logger    *slog.Logger
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	base := defaultLogger(logger)
	return &NotificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *NotificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "NotificationHandler", operation, attrs...)
}

func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req notificationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Send", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode notification request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Send", "principal_id", principal.UserID, "recipient_type", req.RecipientType)

	notification, err := h.service.Send(r.Context(), workflow.SendNotificationParams{
		Principal: principal,
		Title:     req.Title,
		Body:      req.Body,
		Recipients: workflow.RecipientSelection{
			Type:          workflow.RecipientType(req.RecipientType),
			MembershipIDs: req.MembershipIDs,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "notification send failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("notification_id", notification.ID).InfoContext(r.Context(), "notification sent")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, notificationResponse{Notification: toNotificationDTO(notification)})
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	notifications, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "notification listing failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationListResponse{Notifications: toNotificationDTOs(notifications)})
}

func (h *NotificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	notifications, err := h.service.ListForUser(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListMine", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "inbox listing failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationListResponse{Notifications: toNotificationDTOs(notifications)})
}

type notificationRequest struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	RecipientType string   `json:"recipient_type"`
	MembershipIDs []string `json:"membership_ids,omitempty"`
}

type notificationResponse struct {
	Notification notificationDTO `json:"notification"`
}

type notificationListResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}
