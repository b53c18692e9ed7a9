package testfixtures

import (
	"log/slog"
	"testing"
	"time"

	"github.com/example/internship-exchange/internal/workflow"
)

// ServiceFactory assists tests with constructing workflow services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// Portal bundles every workflow service over one SQLite harness.
type Portal struct {
	Harness       *SQLiteHarness
	Memberships   *workflow.MembershipService
	Applications  *workflow.ApplicationService
	Offers        *workflow.OfferService
	Notifications *workflow.NotificationService
	Stats         *workflow.StatsService
	Auth          *workflow.AuthService
	SavedOffers   *workflow.SavedOfferCache
}

// NewPortal wires the workflow services onto a fresh SQLite harness.
func (f *ServiceFactory) NewPortal(tb testing.TB) *Portal {
	tb.Helper()

	h := NewSQLiteHarness(tb)
	ids := f.IDGenerator.NextFunc()
	now := f.Clock.NowFunc()
	provisioner := workflow.NewPasswordProvisioner(FastArgon2idParams, ids, now)

	return &Portal{
		Harness:       h,
		Memberships:   workflow.NewMembershipServiceWithLogger(h.Memberships, provisioner, ids, now, f.Logger),
		Applications:  workflow.NewApplicationServiceWithLogger(h.Applications, h.Memberships, h.Offers, ids, now, f.Logger),
		Offers:        workflow.NewOfferServiceWithLogger(h.Offers, ids, now, f.Logger),
		Notifications: workflow.NewNotificationServiceWithLogger(h.Notifications, h.Memberships, ids, now, f.Logger),
		Stats:         workflow.NewStatsServiceWithLogger(h.Memberships, h.Applications, h.Offers, f.Logger),
		Auth:          workflow.NewAuthServiceWithLogger(h.Users, h.Sessions, nil, ids, now, time.Hour, f.Logger),
		SavedOffers:   workflow.NewSavedOfferCache(h.Storage.KV, f.Logger),
	}
}
