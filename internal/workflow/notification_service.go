package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// NotificationRepository captures the persistence operations needed by NotificationService.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	ListNotifications(ctx context.Context) ([]Notification, error)
}

// NotificationService sends administrator messages to members.
type NotificationService struct {
	notifications NotificationRepository
	memberships   MembershipReader
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications NotificationRepository, memberships MembershipReader, idGenerator func() string, now func() time.Time) *NotificationService {
	return NewNotificationServiceWithLogger(notifications, memberships, idGenerator, now, nil)
}

// NewNotificationServiceWithLogger constructs a NotificationService with a specified logger.
func NewNotificationServiceWithLogger(notifications NotificationRepository, memberships MembershipReader, idGenerator func() string, now func() time.Time, logger *slog.Logger) *NotificationService {
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		memberships:   memberships,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(logger),
	}
}

func (s *NotificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "NotificationService", operation, attrs...)
}

// ResolveRecipients turns a selection into user ids. A broadcast resolves to
// an empty list. Individually selected memberships without a login, or that
// do not exist, are skipped; a selection that leaves nobody is invalid.
func (s *NotificationService) ResolveRecipients(ctx context.Context, selection RecipientSelection) ([]string, error) {
	switch RecipientType(normalizeToken(string(selection.Type))) {
	case RecipientBroadcast:
		return []string{}, nil
	case RecipientIndividual:
	default:
		return nil, newValidationError("recipient_type", "recipient_type must be broadcast or individual")
	}

	if len(selection.MembershipIDs) == 0 {
		return nil, newValidationError("recipients", "at least one recipient is required")
	}
	if s.memberships == nil {
		return nil, fmt.Errorf("membership repository not configured")
	}

	seen := make(map[string]struct{}, len(selection.MembershipIDs))
	ids := make([]string, 0, len(selection.MembershipIDs))
	for _, raw := range selection.MembershipIDs {
		membershipID := strings.TrimSpace(raw)
		if membershipID == "" {
			continue
		}
		membership, err := s.memberships.GetMembership(ctx, membershipID)
		if err != nil {
			if errors.Is(mapRepoError(err), ErrNotFound) {
				continue
			}
			return nil, mapRepoError(err)
		}
		if membership.LinkedUserID == nil || *membership.LinkedUserID == "" {
			continue
		}
		userID := *membership.LinkedUserID
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		ids = append(ids, userID)
	}

	if len(ids) == 0 {
		return nil, newValidationError("recipients", "none of the selected members has a login")
	}
	return ids, nil
}

// Send stores a notification for the resolved recipients.
func (s *NotificationService) Send(ctx context.Context, params SendNotificationParams) (result Notification, err error) {
	if s == nil {
		err = fmt.Errorf("NotificationService is nil")
		return
	}
	logger := s.loggerWith(ctx, "Send", "principal_id", params.Principal.UserID, "recipient_type", params.Recipients.Type)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "notification send failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("notification_id", result.ID, "recipients", len(result.RecipientIDs)).InfoContext(ctx, "notification sent")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.notifications == nil || s.idGenerator == nil {
		err = fmt.Errorf("notification service not configured")
		return
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		err = newValidationError("title", "title is required")
		return
	}

	var recipients []string
	recipients, err = s.ResolveRecipients(ctx, params.Recipients)
	if err != nil {
		return
	}

	notification := Notification{
		ID:           s.idGenerator(),
		Title:        title,
		Body:         strings.TrimSpace(params.Body),
		RecipientIDs: recipients,
		CreatedBy:    params.Principal.UserID,
		CreatedAt:    s.now().UTC(),
	}
	if err = s.notifications.CreateNotification(ctx, notification); err != nil {
		err = mapRepoError(err)
		return
	}
	result = notification
	return
}

// ListForUser returns the notifications delivered to the caller, newest first.
// Broadcasts reach callers whose membership is approved.
func (s *NotificationService) ListForUser(ctx context.Context, principal Principal) (result []Notification, err error) {
	if s == nil {
		err = fmt.Errorf("NotificationService is nil")
		return
	}
	logger := s.loggerWith(ctx, "ListForUser", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "notification delivery lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if s.notifications == nil {
		err = fmt.Errorf("notification repository not configured")
		return
	}

	receivesBroadcasts := false
	if principal.MembershipID != "" && s.memberships != nil {
		membership, getErr := s.memberships.GetMembership(ctx, principal.MembershipID)
		switch {
		case getErr == nil:
			receivesBroadcasts = membership.Status == MembershipApproved
		case !errors.Is(mapRepoError(getErr), ErrNotFound):
			err = mapRepoError(getErr)
			return
		}
	}

	var all []Notification
	all, err = s.notifications.ListNotifications(ctx)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	result = make([]Notification, 0, len(all))
	for _, n := range all {
		if n.IsBroadcast() {
			if receivesBroadcasts {
				result = append(result, n)
			}
			continue
		}
		for _, id := range n.RecipientIDs {
			if id == principal.UserID {
				result = append(result, n)
				break
			}
		}
	}
	sortNewestFirst(result)
	return
}

// List returns every notification to an administrator, newest first.
func (s *NotificationService) List(ctx context.Context, principal Principal) ([]Notification, error) {
	if s == nil {
		return nil, fmt.Errorf("NotificationService is nil")
	}
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	if s.notifications == nil {
		return nil, fmt.Errorf("notification repository not configured")
	}
	all, err := s.notifications.ListNotifications(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sortNewestFirst(all)
	return all, nil
}

func sortNewestFirst(items []Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
