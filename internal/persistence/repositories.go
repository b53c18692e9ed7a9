package persistence

import (
	"context"
	"time"
)

// MembershipTransition describes a compare-and-set move out of FromStatus.
// When Identity is set the user row is inserted in the same transaction and
// linked to the membership.
type MembershipTransition struct {
	MembershipID string
	FromStatus   string
	ToStatus     string
	Identity     *User
	At           time.Time
}

// MembershipRepository stores membership records.
type MembershipRepository interface {
	CreateMembership(ctx context.Context, membership Membership) error
	GetMembership(ctx context.Context, id string) (Membership, error)
	ListMemberships(ctx context.Context) ([]Membership, error)
	TransitionMembership(ctx context.Context, transition MembershipTransition) (Membership, error)
}

// UserRepository stores login identities.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// OfferRepository exposes CRUD operations for offers.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offer Offer) error
	UpdateOffer(ctx context.Context, offer Offer) error
	GetOffer(ctx context.Context, id string) (Offer, error)
	ListOffers(ctx context.Context) ([]Offer, error)
	CountOffers(ctx context.Context) (int, error)
	DeleteOffer(ctx context.Context, id string) error
}

// ApplicationFilter narrows application queries.
type ApplicationFilter struct {
	MembershipID string
	UserID       string
}

// ApplicationRepository stores offer applications.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app Application) error
	GetApplication(ctx context.Context, id string) (Application, error)
	UpdateApplicationStatus(ctx context.Context, id, status, rejectionReason string, at time.Time) (Application, error)
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]Application, error)
}

// NotificationRepository stores immutable notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotifications(ctx context.Context) ([]Notification, error)
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}

// KeyValueStore persists opaque values under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
