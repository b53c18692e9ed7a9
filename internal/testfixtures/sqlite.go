package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/internship-exchange/internal/adapters"
	"github.com/example/internship-exchange/internal/persistence/sqlite"
	"github.com/example/internship-exchange/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated temp-file database with its repositories
// exposed both raw and as workflow adapters.
type SQLiteHarness struct {
	Storage *sqlite.Storage

	Memberships   *adapters.MembershipRepository
	Users         *adapters.UserRepository
	Offers        *adapters.OfferRepository
	Applications  *adapters.ApplicationRepository
	Notifications *adapters.NotificationRepository
	Sessions      *adapters.SessionRepository
}

// NewSQLiteHarness opens and migrates a database under tb.TempDir. It is
// closed automatically when the test ends.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "portal.db")
	storage, err := sqlite.OpenWithConfig(migration.TempFileTestSQLiteConfig(path), nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	return &SQLiteHarness{
		Storage:       storage,
		Memberships:   adapters.NewMembershipRepository(storage.Memberships),
		Users:         adapters.NewUserRepository(storage.Users),
		Offers:        adapters.NewOfferRepository(storage.Offers),
		Applications:  adapters.NewApplicationRepository(storage.Applications),
		Notifications: adapters.NewNotificationRepository(storage.Notifications),
		Sessions:      adapters.NewSessionRepository(storage.Sessions),
	}
}
