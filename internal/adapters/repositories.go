package adapters

import (
	"context"
	"time"

	"github.com/example/internship-exchange/internal/persistence"
	"github.com/example/internship-exchange/internal/workflow"
)

// MembershipRepository exposes persistence memberships as workflow memberships.
type MembershipRepository struct {
	repo persistence.MembershipRepository
}

// NewMembershipRepository wraps repo.
func NewMembershipRepository(repo persistence.MembershipRepository) *MembershipRepository {
	return &MembershipRepository{repo: repo}
}

func (a *MembershipRepository) CreateMembership(ctx context.Context, m workflow.Membership) error {
	return a.repo.CreateMembership(ctx, toPersistenceMembership(m))
}

func (a *MembershipRepository) GetMembership(ctx context.Context, id string) (workflow.Membership, error) {
	m, err := a.repo.GetMembership(ctx, id)
	if err != nil {
		return workflow.Membership{}, err
	}
	return toWorkflowMembership(m), nil
}

func (a *MembershipRepository) ListMemberships(ctx context.Context) ([]workflow.Membership, error) {
	records, err := a.repo.ListMemberships(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]workflow.Membership, 0, len(records))
	for _, m := range records {
		out = append(out, toWorkflowMembership(m))
	}
	return out, nil
}

func (a *MembershipRepository) TransitionMembership(ctx context.Context, t workflow.MembershipTransition) (workflow.Membership, error) {
	transition := persistence.MembershipTransition{
		MembershipID: t.MembershipID,
		FromStatus:   string(t.From),
		ToStatus:     string(t.To),
		At:           t.At,
	}
	if t.Identity != nil {
		user := toPersistenceUser(t.Identity.User, t.Identity.PasswordHash)
		transition.Identity = &user
	}
	m, err := a.repo.TransitionMembership(ctx, transition)
	if err != nil {
		return workflow.Membership{}, err
	}
	return toWorkflowMembership(m), nil
}

// UserRepository serves credential lookups and the admin bootstrap.
type UserRepository struct {
	repo persistence.UserRepository
}

// NewUserRepository wraps repo.
func NewUserRepository(repo persistence.UserRepository) *UserRepository {
	return &UserRepository{repo: repo}
}

func (a *UserRepository) GetUser(ctx context.Context, id string) (workflow.User, error) {
	u, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return workflow.User{}, err
	}
	return toWorkflowUser(u), nil
}

func (a *UserRepository) GetUserCredentialsByEmail(ctx context.Context, email string) (workflow.UserCredentials, error) {
	u, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return workflow.UserCredentials{}, err
	}
	return workflow.UserCredentials{User: toWorkflowUser(u), PasswordHash: u.PasswordHash}, nil
}

func (a *UserRepository) CreateUser(ctx context.Context, creds workflow.UserCredentials) error {
	return a.repo.CreateUser(ctx, toPersistenceUser(creds.User, creds.PasswordHash))
}

// OfferRepository exposes persistence offers as workflow offers.
type OfferRepository struct {
	repo persistence.OfferRepository
}

// NewOfferRepository wraps repo.
func NewOfferRepository(repo persistence.OfferRepository) *OfferRepository {
	return &OfferRepository{repo: repo}
}

func (a *OfferRepository) CreateOffer(ctx context.Context, offer workflow.Offer) error {
	return a.repo.CreateOffer(ctx, toPersistenceOffer(offer))
}

func (a *OfferRepository) UpdateOffer(ctx context.Context, offer workflow.Offer) error {
	return a.repo.UpdateOffer(ctx, toPersistenceOffer(offer))
}

func (a *OfferRepository) GetOffer(ctx context.Context, id string) (workflow.Offer, error) {
	o, err := a.repo.GetOffer(ctx, id)
	if err != nil {
		return workflow.Offer{}, err
	}
	return toWorkflowOffer(o), nil
}

func (a *OfferRepository) ListOffers(ctx context.Context) ([]workflow.Offer, error) {
	records, err := a.repo.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]workflow.Offer, 0, len(records))
	for _, o := range records {
		out = append(out, toWorkflowOffer(o))
	}
	return out, nil
}

func (a *OfferRepository) CountOffers(ctx context.Context) (int, error) {
	return a.repo.CountOffers(ctx)
}

func (a *OfferRepository) DeleteOffer(ctx context.Context, id string) error {
	return a.repo.DeleteOffer(ctx, id)
}

// ApplicationRepository exposes persistence applications as workflow applications.
type ApplicationRepository struct {
	repo persistence.ApplicationRepository
}

// NewApplicationRepository wraps repo.
func NewApplicationRepository(repo persistence.ApplicationRepository) *ApplicationRepository {
	return &ApplicationRepository{repo: repo}
}

func (a *ApplicationRepository) CreateApplication(ctx context.Context, app workflow.Application) error {
	return a.repo.CreateApplication(ctx, toPersistenceApplication(app))
}

func (a *ApplicationRepository) GetApplication(ctx context.Context, id string) (workflow.Application, error) {
	app, err := a.repo.GetApplication(ctx, id)
	if err != nil {
		return workflow.Application{}, err
	}
	return toWorkflowApplication(app), nil
}

func (a *ApplicationRepository) UpdateApplicationStatus(ctx context.Context, id string, status workflow.ApplicationStatus, reason string, at time.Time) (workflow.Application, error) {
	app, err := a.repo.UpdateApplicationStatus(ctx, id, string(status), reason, at)
	if err != nil {
		return workflow.Application{}, err
	}
	return toWorkflowApplication(app), nil
}

func (a *ApplicationRepository) ListApplications(ctx context.Context, filter workflow.ApplicationFilter) ([]workflow.Application, error) {
	records, err := a.repo.ListApplications(ctx, persistence.ApplicationFilter{
		MembershipID: filter.MembershipID,
		UserID:       filter.UserID,
	})
	if err != nil {
		return nil, err
	}
	out := make([]workflow.Application, 0, len(records))
	for _, app := range records {
		out = append(out, toWorkflowApplication(app))
	}
	return out, nil
}

// NotificationRepository exposes persistence notifications as workflow notifications.
type NotificationRepository struct {
	repo persistence.NotificationRepository
}

// NewNotificationRepository wraps repo.
func NewNotificationRepository(repo persistence.NotificationRepository) *NotificationRepository {
	return &NotificationRepository{repo: repo}
}

func (a *NotificationRepository) CreateNotification(ctx context.Context, n workflow.Notification) error {
	return a.repo.CreateNotification(ctx, toPersistenceNotification(n))
}

func (a *NotificationRepository) ListNotifications(ctx context.Context) ([]workflow.Notification, error) {
	records, err := a.repo.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]workflow.Notification, 0, len(records))
	for _, n := range records {
		out = append(out, toWorkflowNotification(n))
	}
	return out, nil
}

// SessionRepository exposes persistence sessions as workflow sessions.
type SessionRepository struct {
	repo persistence.SessionRepository
}

// NewSessionRepository wraps repo.
func NewSessionRepository(repo persistence.SessionRepository) *SessionRepository {
	return &SessionRepository{repo: repo}
}

func (a *SessionRepository) CreateSession(ctx context.Context, session workflow.Session) (workflow.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return workflow.Session{}, err
	}
	return toWorkflowSession(stored), nil
}

func (a *SessionRepository) GetSession(ctx context.Context, token string) (workflow.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return workflow.Session{}, err
	}
	return toWorkflowSession(stored), nil
}

func (a *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (workflow.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return workflow.Session{}, err
	}
	return toWorkflowSession(stored), nil
}

func (a *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

var (
	_ workflow.MembershipRepository   = (*MembershipRepository)(nil)
	_ workflow.AdminStore             = (*UserRepository)(nil)
	_ workflow.OfferRepository        = (*OfferRepository)(nil)
	_ workflow.ApplicationRepository  = (*ApplicationRepository)(nil)
	_ workflow.NotificationRepository = (*NotificationRepository)(nil)
	_ workflow.SessionRepository      = (*SessionRepository)(nil)
)
