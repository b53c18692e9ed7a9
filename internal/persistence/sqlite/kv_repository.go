package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/example/internship-exchange/internal/persistence"
)

// KVRepository implements persistence.KeyValueStore on the kv_entries table
type KVRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewKVRepository creates a new SQLite key-value repository
func NewKVRepository(pool *ConnectionPool) *KVRepository {
	return &KVRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// Get returns the value stored under key
func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.helper.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		mapped := r.mapper.MapError(err)
		if errors.Is(mapped, persistence.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, mapped
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.helper.Exec(ctx, `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(time.Now()),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}
