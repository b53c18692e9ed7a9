package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/internship-exchange/internal/persistence"
)

const applicationColumns = `id, membership_id, user_id, offer_id, status, rejection_reason, created_at, updated_at`

// ApplicationRepository implements persistence.ApplicationRepository using SQLite
type ApplicationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewApplicationRepository creates a new SQLite application repository
func NewApplicationRepository(pool *ConnectionPool) *ApplicationRepository {
	return &ApplicationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateApplication inserts a new application. The unique index on
// (user_id, offer_id) turns a duplicate attempt into persistence.ErrDuplicate
// regardless of how many callers race.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, app persistence.Application) error {
	if app.ID == "" || app.UserID == "" || app.OfferID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `INSERT INTO applications (`+applicationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID,
		app.MembershipID,
		app.UserID,
		app.OfferID,
		app.Status,
		app.RejectionReason,
		formatTime(app.CreatedAt),
		formatTime(app.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetApplication retrieves an application by ID
func (r *ApplicationRepository) GetApplication(ctx context.Context, id string) (persistence.Application, error) {
	if id == "" {
		return persistence.Application{}, persistence.ErrNotFound
	}

	app, err := scanApplication(r.helper.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id))
	if err != nil {
		return persistence.Application{}, r.mapper.MapError(err)
	}
	return app, nil
}

// UpdateApplicationStatus sets status and rejection reason in one statement
func (r *ApplicationRepository) UpdateApplicationStatus(ctx context.Context, id, status, rejectionReason string, at time.Time) (persistence.Application, error) {
	if id == "" {
		return persistence.Application{}, persistence.ErrNotFound
	}

	res, err := r.helper.Exec(ctx, `
		UPDATE applications SET status = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ?`,
		status,
		rejectionReason,
		formatTime(at),
		id,
	)
	if err != nil {
		return persistence.Application{}, r.mapper.MapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return persistence.Application{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Application{}, persistence.ErrNotFound
	}

	return r.GetApplication(ctx, id)
}

// ListApplications returns applications matching filter, newest first
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter persistence.ApplicationFilter) ([]persistence.Application, error) {
	var conditions []string
	var args []any
	if filter.MembershipID != "" {
		conditions = append(conditions, "membership_id = ?")
		args = append(args, filter.MembershipID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}

	query := `SELECT ` + applicationColumns + ` FROM applications`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var apps []persistence.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return apps, nil
}

func scanApplication(row rowScanner) (persistence.Application, error) {
	var app persistence.Application
	var createdAt, updatedAt string

	err := row.Scan(
		&app.ID,
		&app.MembershipID,
		&app.UserID,
		&app.OfferID,
		&app.Status,
		&app.RejectionReason,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Application{}, err
	}

	if app.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Application{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if app.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Application{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return app, nil
}
