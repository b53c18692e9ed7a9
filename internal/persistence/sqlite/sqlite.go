package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/internship-exchange/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite repositories sharing one connection pool.
type Storage struct {
	pool   *ConnectionPool
	logger *slog.Logger

	Memberships   *MembershipRepository
	Users         *UserRepository
	Offers        *OfferRepository
	Applications  *ApplicationRepository
	Notifications *NotificationRepository
	Sessions      *SessionRepository
	KV            *KVRepository
}

// Open returns a Storage backed by the database file at path using default settings.
func Open(path string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(path), logger)
}

// OpenWithConfig returns a Storage using the supplied connection settings.
func OpenWithConfig(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		pool:          pool,
		logger:        logger,
		Memberships:   NewMembershipRepository(pool),
		Users:         NewUserRepository(pool),
		Offers:        NewOfferRepository(pool),
		Applications:  NewApplicationRepository(pool),
		Notifications: NewNotificationRepository(pool),
		Sessions:      NewSessionRepository(pool),
		KV:            NewKVRepository(pool),
	}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewManager(
		migration.NewFileScanner(),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationFiles,
		"migrations",
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
