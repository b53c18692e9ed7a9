package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/internship-exchange/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository using SQLite
type NotificationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewNotificationRepository creates a new SQLite notification repository
func NewNotificationRepository(pool *ConnectionPool) *NotificationRepository {
	return &NotificationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateNotification stores a notification and its recipient list atomically.
// An empty recipient list is stored as a broadcast.
func (r *NotificationRepository) CreateNotification(ctx context.Context, n persistence.Notification) error {
	if n.ID == "" {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, title, body, created_by, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			n.ID, n.Title, n.Body, n.CreatedBy, formatTime(n.CreatedAt),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		for _, userID := range n.RecipientIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO notification_recipients (notification_id, user_id)
				VALUES (?, ?)`, n.ID, userID)
			if err != nil {
				return r.mapper.MapError(err)
			}
		}
		return nil
	})
}

// ListNotifications returns all notifications with recipients, newest first
func (r *NotificationRepository) ListNotifications(ctx context.Context) ([]persistence.Notification, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, title, body, created_by, created_at
		FROM notifications ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	index := make(map[string]int)
	for rows.Next() {
		var n persistence.Notification
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedBy, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		index[n.ID] = len(notifications)
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	rows.Close()

	recipients, err := r.helper.Query(ctx, `
		SELECT notification_id, user_id FROM notification_recipients
		ORDER BY notification_id, user_id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer recipients.Close()

	for recipients.Next() {
		var notificationID, userID string
		if err := recipients.Scan(&notificationID, &userID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if i, ok := index[notificationID]; ok {
			notifications[i].RecipientIDs = append(notifications[i].RecipientIDs, userID)
		}
	}
	if err := recipients.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return notifications, nil
}
