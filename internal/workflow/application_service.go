package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ApplicationLister lists applications. StatsService only needs this much.
type ApplicationLister interface {
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
}

// ApplicationRepository captures the persistence operations needed by ApplicationService.
type ApplicationRepository interface {
	ApplicationLister
	CreateApplication(ctx context.Context, app Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	UpdateApplicationStatus(ctx context.Context, id string, status ApplicationStatus, rejectionReason string, at time.Time) (Application, error)
}

// OfferReader exposes offer lookups.
type OfferReader interface {
	GetOffer(ctx context.Context, id string) (Offer, error)
	ListOffers(ctx context.Context) ([]Offer, error)
}

// ApplicationService tracks member applications to offers.
type ApplicationService struct {
	applications ApplicationRepository
	memberships  MembershipReader
	offers       OfferReader
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(applications ApplicationRepository, memberships MembershipReader, offers OfferReader, idGenerator func() string, now func() time.Time) *ApplicationService {
	return NewApplicationServiceWithLogger(applications, memberships, offers, idGenerator, now, nil)
}

// NewApplicationServiceWithLogger constructs an ApplicationService with a specified logger.
func NewApplicationServiceWithLogger(applications ApplicationRepository, memberships MembershipReader, offers OfferReader, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ApplicationService {
	if now == nil {
		now = time.Now
	}
	return &ApplicationService{
		applications: applications,
		memberships:  memberships,
		offers:       offers,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ApplicationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ApplicationService", operation, attrs...)
}

// Apply records the caller's application to an offer. A second application
// by the same user to the same offer fails with ErrConflict.
func (s *ApplicationService) Apply(ctx context.Context, params ApplyParams) (result Application, err error) {
	if s == nil {
		err = fmt.Errorf("ApplicationService is nil")
		return
	}
	offerID := strings.TrimSpace(params.OfferID)
	logger := s.loggerWith(ctx, "Apply", "principal_id", params.Principal.UserID, "offer_id", offerID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "application failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("application_id", result.ID, "membership_id", result.MembershipID).InfoContext(ctx, "application submitted")
	}()

	if s.applications == nil || s.memberships == nil || s.offers == nil || s.idGenerator == nil {
		err = fmt.Errorf("application service not configured")
		return
	}

	principal := params.Principal
	userID := strings.TrimSpace(params.UserID)
	if userID == "" {
		userID = principal.UserID
	}
	membershipID := strings.TrimSpace(params.MembershipID)
	if membershipID == "" {
		membershipID = principal.MembershipID
	}
	if !principal.Authenticated() || membershipID == "" || userID != principal.UserID || membershipID != principal.MembershipID {
		err = ErrUnauthorized
		return
	}
	if offerID == "" {
		err = newValidationError("offer_id", "offer_id is required")
		return
	}

	var membership Membership
	membership, err = s.memberships.GetMembership(ctx, membershipID)
	if err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrNotFound) {
			err = ErrUnauthorized
		}
		return
	}
	if membership.Status != MembershipApproved || membership.LinkedUserID == nil || *membership.LinkedUserID != userID {
		err = ErrUnauthorized
		return
	}

	if _, err = s.offers.GetOffer(ctx, offerID); err != nil {
		err = mapRepoError(err)
		return
	}

	now := s.now().UTC()
	app := Application{
		ID:           s.idGenerator(),
		MembershipID: membershipID,
		UserID:       userID,
		OfferID:      offerID,
		Status:       ApplicationSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.applications.CreateApplication(ctx, app); err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrConflict) {
			err = fmt.Errorf("already applied to offer %s: %w", offerID, ErrConflict)
		}
		return
	}

	result = app
	return
}

// UpdateStatus sets an application's status. Any status may follow any
// other; the rejection reason survives only on rejected applications.
func (s *ApplicationService) UpdateStatus(ctx context.Context, params UpdateApplicationStatusParams) (result Application, err error) {
	if s == nil {
		err = fmt.Errorf("ApplicationService is nil")
		return
	}
	id := strings.TrimSpace(params.ApplicationID)
	logger := s.loggerWith(ctx, "UpdateStatus", "principal_id", params.Principal.UserID, "application_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "application status update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", result.Status).InfoContext(ctx, "application status updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.applications == nil {
		err = fmt.Errorf("application repository not configured")
		return
	}

	status, ok := ParseApplicationStatus(params.Status)
	if !ok {
		err = newValidationError("status", "status must be submitted, shortlisted, selected or rejected")
		return
	}
	if id == "" {
		err = ErrNotFound
		return
	}

	reason := ""
	if status == ApplicationRejected {
		reason = strings.TrimSpace(params.RejectionReason)
	}

	result, err = s.applications.UpdateApplicationStatus(ctx, id, status, reason, s.now().UTC())
	err = mapRepoError(err)
	return
}

// ListByMembership returns a member's applications with per-status counts.
// Administrators and the owning member may call it.
func (s *ApplicationService) ListByMembership(ctx context.Context, principal Principal, membershipID string) (result MembershipApplications, err error) {
	if s == nil {
		err = fmt.Errorf("ApplicationService is nil")
		return
	}
	membershipID = strings.TrimSpace(membershipID)
	logger := s.loggerWith(ctx, "ListByMembership", "principal_id", principal.UserID, "membership_id", membershipID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "membership applications lookup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", result.Stats.TotalApplied).InfoContext(ctx, "membership applications listed")
	}()

	if !principal.IsAdmin && (membershipID == "" || principal.MembershipID != membershipID) {
		err = ErrUnauthorized
		return
	}
	if s.applications == nil || s.memberships == nil {
		err = fmt.Errorf("application service not configured")
		return
	}

	var membership Membership
	membership, err = s.memberships.GetMembership(ctx, membershipID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var apps []Application
	apps, err = s.applications.ListApplications(ctx, ApplicationFilter{MembershipID: membershipID})
	if err != nil {
		err = mapRepoError(err)
		return
	}

	result = MembershipApplications{
		Membership:   membership,
		Applications: apps,
		Stats:        CountApplications(apps),
	}
	return
}

// List returns every application joined with its member and offer,
// filtered by the query.
func (s *ApplicationService) List(ctx context.Context, params ListApplicationsParams) (result []ApplicationDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ApplicationService is nil")
		return
	}
	logger := s.loggerWith(ctx, "List", "principal_id", params.Principal.UserID, "status", params.Query.Status)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "application listing failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("count", len(result)).InfoContext(ctx, "applications listed")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var details []ApplicationDetail
	details, err = s.details(ctx, ApplicationFilter{})
	if err != nil {
		return
	}
	result = Filter(details, params.Query)
	return
}

// ListMine returns the caller's own applications with their offers.
func (s *ApplicationService) ListMine(ctx context.Context, principal Principal) (result []ApplicationDetail, err error) {
	if s == nil {
		err = fmt.Errorf("ApplicationService is nil")
		return
	}
	logger := s.loggerWith(ctx, "ListMine", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "own application listing failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	result, err = s.details(ctx, ApplicationFilter{UserID: principal.UserID})
	return
}

func (s *ApplicationService) details(ctx context.Context, filter ApplicationFilter) ([]ApplicationDetail, error) {
	if s.applications == nil || s.memberships == nil || s.offers == nil {
		return nil, fmt.Errorf("application service not configured")
	}

	apps, err := s.applications.ListApplications(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if len(apps) == 0 {
		return []ApplicationDetail{}, nil
	}

	memberships, err := s.memberships.ListMemberships(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	offers, err := s.offers.ListOffers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	membersByID := make(map[string]Membership, len(memberships))
	for _, m := range memberships {
		membersByID[m.ID] = m
	}
	offersByID := make(map[string]Offer, len(offers))
	for _, o := range offers {
		offersByID[o.ID] = o
	}

	out := make([]ApplicationDetail, 0, len(apps))
	for _, app := range apps {
		out = append(out, ApplicationDetail{
			Application: app,
			Member:      membersByID[app.MembershipID],
			Offer:       offersByID[app.OfferID],
		})
	}
	return out, nil
}
