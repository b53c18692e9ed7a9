package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/internship-exchange/internal/persistence"
)

// UserRepository implements persistence.UserRepository using SQLite
type UserRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertUser(ctx context.Context, db execer, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, is_admin, membership_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		normalizeEmail(user.Email),
		user.PasswordHash,
		user.IsAdmin,
		nullableString(user.MembershipID),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	return err
}

// CreateUser inserts a standalone identity such as a bootstrap administrator
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if err := insertUser(ctx, r.pool.DB(), user); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getBy(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email address, ignoring case
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	return r.getBy(ctx, "email", normalized)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (persistence.User, error) {
	query := `SELECT id, email, password_hash, is_admin, membership_id, created_at, updated_at
		FROM users WHERE ` + column + ` = ?`

	var user persistence.User
	var membershipID sql.NullString
	var createdAt, updatedAt string

	err := r.helper.QueryRow(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&membershipID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}

	user.MembershipID = stringPtr(membershipID)
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
