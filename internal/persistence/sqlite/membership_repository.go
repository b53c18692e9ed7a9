package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/internship-exchange/internal/persistence"
)

const membershipColumns = `id, full_name, registration_number, email, whatsapp_number, course,
	branch_section, semester, member_type, has_passport, university_name, university_state,
	university_city, university_pincode, university_address, status, linked_user_id,
	decided_at, created_at, updated_at`

// MembershipRepository implements persistence.MembershipRepository using SQLite
type MembershipRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewMembershipRepository creates a new SQLite membership repository
func NewMembershipRepository(pool *ConnectionPool) *MembershipRepository {
	return &MembershipRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateMembership inserts a new membership record
func (r *MembershipRepository) CreateMembership(ctx context.Context, m persistence.Membership) error {
	if m.ID == "" || m.RegistrationNumber == "" {
		return persistence.ErrConstraintViolation
	}

	query := `INSERT INTO memberships (` + membershipColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.helper.Exec(ctx, query,
		m.ID,
		m.FullName,
		m.RegistrationNumber,
		m.Email,
		m.WhatsAppNumber,
		m.Course,
		m.BranchSection,
		m.Semester,
		m.MemberType,
		m.HasPassport,
		nullableString(m.UniversityName),
		nullableString(m.UniversityState),
		nullableString(m.UniversityCity),
		nullableString(m.UniversityPincode),
		nullableString(m.UniversityAddress),
		m.Status,
		nullableString(m.LinkedUserID),
		nullableTime(m.DecidedAt),
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetMembership retrieves a membership by ID
func (r *MembershipRepository) GetMembership(ctx context.Context, id string) (persistence.Membership, error) {
	if id == "" {
		return persistence.Membership{}, persistence.ErrNotFound
	}

	row := r.helper.QueryRow(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id)
	m, err := scanMembership(row)
	if err != nil {
		return persistence.Membership{}, r.mapper.MapError(err)
	}
	return m, nil
}

// ListMemberships returns all memberships, newest first
func (r *MembershipRepository) ListMemberships(ctx context.Context) ([]persistence.Membership, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+membershipColumns+` FROM memberships ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var memberships []persistence.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return memberships, nil
}

// TransitionMembership moves a membership out of transition.FromStatus. The
// UPDATE is guarded by the expected status so that concurrent deciders cannot
// both succeed; the loser receives persistence.ErrStateChanged. When an
// identity is supplied it is inserted and linked inside the same transaction.
func (r *MembershipRepository) TransitionMembership(ctx context.Context, t persistence.MembershipTransition) (persistence.Membership, error) {
	if t.MembershipID == "" {
		return persistence.Membership{}, persistence.ErrNotFound
	}

	var result persistence.Membership
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var linkedUserID sql.NullString
		if t.Identity != nil {
			linkedUserID = sql.NullString{String: t.Identity.ID, Valid: true}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE memberships
			SET status = ?, linked_user_id = COALESCE(?, linked_user_id), decided_at = ?, updated_at = ?
			WHERE id = ? AND status = ?`,
			t.ToStatus,
			linkedUserID,
			formatTime(t.At),
			formatTime(t.At),
			t.MembershipID,
			t.FromStatus,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM memberships WHERE id = ?`, t.MembershipID).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				return persistence.ErrNotFound
			}
			if err != nil {
				return r.mapper.MapError(err)
			}
			return persistence.ErrStateChanged
		}

		if t.Identity != nil {
			if err := insertUser(ctx, tx, *t.Identity); err != nil {
				return r.mapper.MapError(err)
			}
		}

		row := tx.QueryRowContext(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, t.MembershipID)
		result, err = scanMembership(row)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
	if err != nil {
		return persistence.Membership{}, err
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (persistence.Membership, error) {
	var m persistence.Membership
	var universityName, universityState, universityCity, universityPincode, universityAddress sql.NullString
	var linkedUserID, decidedAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&m.ID,
		&m.FullName,
		&m.RegistrationNumber,
		&m.Email,
		&m.WhatsAppNumber,
		&m.Course,
		&m.BranchSection,
		&m.Semester,
		&m.MemberType,
		&m.HasPassport,
		&universityName,
		&universityState,
		&universityCity,
		&universityPincode,
		&universityAddress,
		&m.Status,
		&linkedUserID,
		&decidedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Membership{}, err
	}

	m.UniversityName = stringPtr(universityName)
	m.UniversityState = stringPtr(universityState)
	m.UniversityCity = stringPtr(universityCity)
	m.UniversityPincode = stringPtr(universityPincode)
	m.UniversityAddress = stringPtr(universityAddress)
	m.LinkedUserID = stringPtr(linkedUserID)

	if m.DecidedAt, err = parseNullableTime(decidedAt); err != nil {
		return persistence.Membership{}, fmt.Errorf("failed to parse decided_at: %w", err)
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Membership{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Membership{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return m, nil
}
