package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/internship-exchange/internal/workflow"
)

type offerService interface {
	CreateOffer(ctx context.Context, params workflow.CreateOfferParams) (workflow.Offer, error)
	UpdateOffer(ctx context.Context, params workflow.UpdateOfferParams) (workflow.Offer, error)
	DeleteOffer(ctx context.Context, principal workflow.Principal, id string) error
	GetOffer(ctx context.Context, principal workflow.Principal, id string) (workflow.Offer, error)
	ListOffers(ctx context.Context, principal workflow.Principal, q workflow.Query) ([]workflow.Offer, error)
}

type OfferHandler struct {
	service   offerService
	responder responder
	logger    *slog.Logger
}

func NewOfferHandler(service offerService, logger *slog.Logger) *OfferHandler {
	base := defaultLogger(logger)
	return &OfferHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *OfferHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "OfferHandler", operation, attrs...)
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode offer request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	offer, err := h.service.CreateOffer(r.Context(), workflow.CreateOfferParams{Principal: principal, Input: req.toInput()})
	if err != nil {
		logger.ErrorContext(r.Context(), "offer creation failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("offer_id", offer.ID).InfoContext(r.Context(), "offer created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, offerResponse{Offer: toOfferDTO(offer)})
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	offerID := pathID(r, "id")
	if offerID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "offer_id", offerID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode offer update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "offer_id", offerID)

	offer, err := h.service.UpdateOffer(r.Context(), workflow.UpdateOfferParams{
		Principal: principal,
		OfferID:   offerID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "offer update failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "offer updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, offerResponse{Offer: toOfferDTO(offer)})
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	offerID := pathID(r, "id")
	if offerID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "offer_id", offerID)

	if err := h.service.DeleteOffer(r.Context(), principal, offerID); err != nil {
		logger.ErrorContext(r.Context(), "offer deletion failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "offer deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	offerID := pathID(r, "id")
	if offerID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingPathID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	offer, err := h.service.GetOffer(r.Context(), principal, offerID)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "offer_id", offerID).
			ErrorContext(r.Context(), "offer lookup failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, offerResponse{Offer: toOfferDTO(offer)})
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := workflow.ParseQuery(r.URL.Query())

	offers, err := h.service.ListOffers(r.Context(), principal, query)
	if err != nil {
		h.log(r.Context(), "List", "principal_id", principal.UserID).
			ErrorContext(r.Context(), "offer listing failed", "error", err, "error_kind", workflow.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]offerDTO, 0, len(offers))
	for _, offer := range offers {
		out = append(out, toOfferDTO(offer))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, offerListResponse{Offers: out})
}

type offerResponse struct {
	Offer offerDTO `json:"offer"`
}

type offerListResponse struct {
	Offers []offerDTO `json:"offers"`
}
