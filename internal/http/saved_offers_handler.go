package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/internship-exchange/internal/workflow"
)

type savedOfferStore interface {
	Load(ctx context.Context, memberKey string) workflow.OfferSet
	Toggle(ctx context.Context, memberKey, offerID string) (workflow.OfferSet, error)
}

type memberResolver interface {
	MembershipForUser(ctx context.Context, principal workflow.Principal) (workflow.Membership, error)
}

// SavedOffersHandler exposes a member's bookmarked offers. The member key is
// the caller's registration number.
type SavedOffersHandler struct {
	cache     savedOfferStore
	members   memberResolver
	responder responder
	logger    *slog.Logger
}

func NewSavedOffersHandler(cache savedOfferStore, members memberResolver, logger *slog.Logger) *SavedOffersHandler {
	base := defaultLogger(logger)
	return &SavedOffersHandler{cache: cache, members: members, responder: newResponder(base), logger: base}
}

func (h *SavedOffersHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SavedOffersHandler", operation, attrs...)
}

func (h *SavedOffersHandler) memberKey(ctx context.Context) (string, error) {
	principal, _ := PrincipalFromContext(ctx)
	membership, err := h.members.MembershipForUser(ctx, principal)
	if err != nil {
		return "", err
	}
	return membership.RegistrationNumber, nil
}

func (h *SavedOffersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.cache == nil || h.members == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	key, err := h.memberKey(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "member lookup failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	set := h.cache.Load(r.Context(), key)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, savedOffersResponse{OfferIDs: set.IDs()})
}

func (h *SavedOffersHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.cache == nil || h.members == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	offerID := pathID(r, "offerID")
	if offerID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	key, err := h.memberKey(r.Context())
	if err != nil {
		h.log(r.Context(), "Toggle", "offer_id", offerID).ErrorContext(r.Context(), "member lookup failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Toggle", "offer_id", offerID)

	set, err := h.cache.Toggle(r.Context(), key, offerID)
	if err != nil {
		logger.ErrorContext(r.Context(), "saved offer toggle failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	saved := set.Has(offerID)
	logger.InfoContext(r.Context(), "saved offer toggled", "saved", saved)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, savedOffersResponse{OfferIDs: set.IDs(), Saved: &saved})
}

type savedOffersResponse struct {
	OfferIDs []string `json:"offer_ids"`
	Saved    *bool    `json:"saved,omitempty"`
}
