// Package kvstore provides key-value backends for small per-member blobs.
package kvstore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize bounds the in-process store when no size is configured.
const DefaultMemorySize = 1024

// Memory is a bounded in-process store. Least recently used keys are evicted
// once the size is reached.
type Memory struct {
	cache *lru.Cache[string, []byte]
}

// NewMemory constructs a Memory store holding at most size keys.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &Memory{cache: cache}, nil
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	value, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Add(key, append([]byte(nil), value...))
	return nil
}

// Len reports the number of stored keys.
func (m *Memory) Len() int {
	return m.cache.Len()
}
