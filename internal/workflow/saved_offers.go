package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const savedOffersKeyPrefix = "saved_offers:"

// KeyValueStore persists opaque values under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// OfferSet is a set of offer ids.
type OfferSet map[string]struct{}

// NewOfferSet builds a set from ids, ignoring blanks.
func NewOfferSet(ids ...string) OfferSet {
	set := make(OfferSet, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// Has reports whether id is in the set.
func (s OfferSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s OfferSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SavedOffersKey returns the store key for a member's saved offers.
func SavedOffersKey(memberKey string) string {
	return savedOffersKeyPrefix + memberKey
}

// SavedOfferCache keeps a member's bookmarked offers in a key-value store.
type SavedOfferCache struct {
	store  KeyValueStore
	logger *slog.Logger
}

// NewSavedOfferCache constructs a SavedOfferCache.
func NewSavedOfferCache(store KeyValueStore, logger *slog.Logger) *SavedOfferCache {
	return &SavedOfferCache{store: store, logger: defaultLogger(logger)}
}

// Load returns the saved set for memberKey. Missing or unreadable data
// yields an empty set.
func (c *SavedOfferCache) Load(ctx context.Context, memberKey string) OfferSet {
	memberKey = strings.TrimSpace(memberKey)
	if c == nil || c.store == nil || memberKey == "" {
		return OfferSet{}
	}
	set, err := c.read(ctx, memberKey)
	if err != nil {
		serviceLogger(ctx, c.logger, "SavedOfferCache", "Load", "member_key", memberKey).
			WarnContext(ctx, "saved offers unavailable", "error", err)
		return OfferSet{}
	}
	return set
}

// read fetches the stored set. Store failures are returned; a missing key or
// a corrupt payload yields an empty set.
func (c *SavedOfferCache) read(ctx context.Context, memberKey string) (OfferSet, error) {
	raw, ok, err := c.store.Get(ctx, SavedOffersKey(memberKey))
	if err != nil {
		return nil, fmt.Errorf("read saved offers: %w", err)
	}
	if !ok || len(raw) == 0 {
		return OfferSet{}, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		serviceLogger(ctx, c.logger, "SavedOfferCache", "read", "member_key", memberKey).
			WarnContext(ctx, "saved offers corrupt", "error", err)
		return OfferSet{}, nil
	}
	return NewOfferSet(ids...), nil
}

// Toggle adds offerID when absent and removes it when present, then persists
// the new set.
func (c *SavedOfferCache) Toggle(ctx context.Context, memberKey, offerID string) (OfferSet, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("saved offer store not configured")
	}
	memberKey = strings.TrimSpace(memberKey)
	offerID = strings.TrimSpace(offerID)

	vErr := &ValidationError{}
	if memberKey == "" {
		vErr.add("member_key", "member_key is required")
	}
	if offerID == "" {
		vErr.add("offer_id", "offer_id is required")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	set, err := c.read(ctx, memberKey)
	if err != nil {
		return nil, err
	}
	if set.Has(offerID) {
		delete(set, offerID)
	} else {
		set[offerID] = struct{}{}
	}

	payload, err := json.Marshal(set.IDs())
	if err != nil {
		return nil, fmt.Errorf("encode saved offers: %w", err)
	}
	if err := c.store.Set(ctx, SavedOffersKey(memberKey), payload); err != nil {
		serviceLogger(ctx, c.logger, "SavedOfferCache", "Toggle", "member_key", memberKey).
			ErrorContext(ctx, "saved offers write failed", "error", err, "error_kind", ErrorKind(err))
		return nil, fmt.Errorf("store saved offers: %w", err)
	}
	return set, nil
}
