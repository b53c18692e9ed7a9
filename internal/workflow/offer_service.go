package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// OfferRepository captures the persistence operations needed by OfferService.
type OfferRepository interface {
	OfferReader
	OfferCounter
	CreateOffer(ctx context.Context, offer Offer) error
	UpdateOffer(ctx context.Context, offer Offer) error
	DeleteOffer(ctx context.Context, id string) error
}

// OfferService manages the internship catalog.
type OfferService struct {
	repo        OfferRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewOfferService constructs an OfferService.
func NewOfferService(repo OfferRepository, idGenerator func() string, now func() time.Time) *OfferService {
	return NewOfferServiceWithLogger(repo, idGenerator, now, nil)
}

// NewOfferServiceWithLogger constructs an OfferService with a specified logger.
func NewOfferServiceWithLogger(repo OfferRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *OfferService {
	if now == nil {
		now = time.Now
	}
	return &OfferService{repo: repo, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *OfferService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "OfferService", operation, attrs...)
}

// CreateOffer publishes a new offer.
func (s *OfferService) CreateOffer(ctx context.Context, params CreateOfferParams) (result Offer, err error) {
	if s == nil {
		err = fmt.Errorf("OfferService is nil")
		return
	}
	logger := s.loggerWith(ctx, "CreateOffer", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "offer creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("offer_id", result.ID).InfoContext(ctx, "offer created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.repo == nil || s.idGenerator == nil {
		err = fmt.Errorf("offer service not configured")
		return
	}

	offer, vErr := normalizeOfferInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	now := s.now().UTC()
	offer.ID = s.idGenerator()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	if err = s.repo.CreateOffer(ctx, offer); err != nil {
		err = mapRepoError(err)
		return
	}
	result = offer
	return
}

// UpdateOffer replaces an offer's descriptive fields.
func (s *OfferService) UpdateOffer(ctx context.Context, params UpdateOfferParams) (result Offer, err error) {
	if s == nil {
		err = fmt.Errorf("OfferService is nil")
		return
	}
	id := strings.TrimSpace(params.OfferID)
	logger := s.loggerWith(ctx, "UpdateOffer", "principal_id", params.Principal.UserID, "offer_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "offer update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "offer updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.repo == nil {
		err = fmt.Errorf("offer repository not configured")
		return
	}

	var existing Offer
	existing, err = s.repo.GetOffer(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	offer, vErr := normalizeOfferInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	offer.ID = existing.ID
	offer.CreatedAt = existing.CreatedAt
	offer.UpdatedAt = s.now().UTC()

	if err = s.repo.UpdateOffer(ctx, offer); err != nil {
		err = mapRepoError(err)
		return
	}
	result = offer
	return
}

// DeleteOffer removes an offer and, through the storage cascade, its applications.
func (s *OfferService) DeleteOffer(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("OfferService is nil")
	}
	id = strings.TrimSpace(id)
	logger := s.loggerWith(ctx, "DeleteOffer", "principal_id", principal.UserID, "offer_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "offer deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "offer deleted")
	}()

	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.repo == nil {
		return fmt.Errorf("offer repository not configured")
	}
	return mapRepoError(s.repo.DeleteOffer(ctx, id))
}

// GetOffer returns one offer to any signed-in caller.
func (s *OfferService) GetOffer(ctx context.Context, principal Principal, id string) (Offer, error) {
	if s == nil {
		return Offer{}, fmt.Errorf("OfferService is nil")
	}
	if !principal.Authenticated() {
		return Offer{}, ErrUnauthorized
	}
	if s.repo == nil {
		return Offer{}, fmt.Errorf("offer repository not configured")
	}
	offer, err := s.repo.GetOffer(ctx, strings.TrimSpace(id))
	if err != nil {
		return Offer{}, mapRepoError(err)
	}
	return offer, nil
}

// ListOffers returns offers matching the query.
func (s *OfferService) ListOffers(ctx context.Context, principal Principal, q Query) ([]Offer, error) {
	if s == nil {
		return nil, fmt.Errorf("OfferService is nil")
	}
	if !principal.Authenticated() {
		return nil, ErrUnauthorized
	}
	if s.repo == nil {
		return nil, fmt.Errorf("offer repository not configured")
	}
	offers, err := s.repo.ListOffers(ctx)
	if err != nil {
		logger := s.loggerWith(ctx, "ListOffers", "principal_id", principal.UserID)
		logger.ErrorContext(ctx, "offer listing failed", "error", err, "error_kind", ErrorKind(err))
		return nil, mapRepoError(err)
	}
	return Filter(offers, q), nil
}

func normalizeOfferInput(input OfferInput) (Offer, *ValidationError) {
	offer := Offer{
		Company:     strings.TrimSpace(input.Company),
		Position:    strings.TrimSpace(input.Position),
		Country:     strings.TrimSpace(input.Country),
		Field:       strings.TrimSpace(input.Field),
		Description: strings.TrimSpace(input.Description),
		Duration:    strings.TrimSpace(input.Duration),
	}
	vErr := &ValidationError{}
	if offer.Company == "" {
		vErr.add("company", "company is required")
	}
	if offer.Position == "" {
		vErr.add("position", "position is required")
	}
	if offer.Country == "" {
		vErr.add("country", "country is required")
	}
	return offer, vErr
}
