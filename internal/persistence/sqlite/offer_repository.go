package sqlite

import (
	"context"
	"fmt"

	"github.com/example/internship-exchange/internal/persistence"
)

const offerColumns = `id, company, position, country, field, description, duration, created_at, updated_at`

// OfferRepository implements persistence.OfferRepository using SQLite
type OfferRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewOfferRepository creates a new SQLite offer repository
func NewOfferRepository(pool *ConnectionPool) *OfferRepository {
	return &OfferRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateOffer inserts a new offer
func (r *OfferRepository) CreateOffer(ctx context.Context, offer persistence.Offer) error {
	if offer.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx, `INSERT INTO offers (`+offerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID,
		offer.Company,
		offer.Position,
		offer.Country,
		offer.Field,
		offer.Description,
		offer.Duration,
		formatTime(offer.CreatedAt),
		formatTime(offer.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateOffer replaces the mutable fields of an offer
func (r *OfferRepository) UpdateOffer(ctx context.Context, offer persistence.Offer) error {
	if offer.ID == "" {
		return persistence.ErrNotFound
	}

	res, err := r.helper.Exec(ctx, `
		UPDATE offers
		SET company = ?, position = ?, country = ?, field = ?, description = ?, duration = ?, updated_at = ?
		WHERE id = ?`,
		offer.Company,
		offer.Position,
		offer.Country,
		offer.Field,
		offer.Description,
		offer.Duration,
		formatTime(offer.UpdatedAt),
		offer.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetOffer retrieves an offer by ID
func (r *OfferRepository) GetOffer(ctx context.Context, id string) (persistence.Offer, error) {
	if id == "" {
		return persistence.Offer{}, persistence.ErrNotFound
	}

	offer, err := scanOffer(r.helper.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = ?`, id))
	if err != nil {
		return persistence.Offer{}, r.mapper.MapError(err)
	}
	return offer, nil
}

// ListOffers returns all offers, newest first
func (r *OfferRepository) ListOffers(ctx context.Context) ([]persistence.Offer, error) {
	rows, err := r.helper.Query(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var offers []persistence.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return offers, nil
}

// CountOffers returns the number of stored offers
func (r *OfferRepository) CountOffers(ctx context.Context) (int, error) {
	var count int
	if err := r.helper.QueryRow(ctx, `SELECT COUNT(*) FROM offers`).Scan(&count); err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// DeleteOffer removes an offer and, through the foreign key, its applications
func (r *OfferRepository) DeleteOffer(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	res, err := r.helper.Exec(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanOffer(row rowScanner) (persistence.Offer, error) {
	var offer persistence.Offer
	var createdAt, updatedAt string

	err := row.Scan(
		&offer.ID,
		&offer.Company,
		&offer.Position,
		&offer.Country,
		&offer.Field,
		&offer.Description,
		&offer.Duration,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Offer{}, err
	}

	if offer.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Offer{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if offer.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Offer{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return offer, nil
}
