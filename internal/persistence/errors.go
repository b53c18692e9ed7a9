package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record fails a storage level check.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrStateChanged is returned when a compare-and-set transition finds the
	// record in a different state than the one it expected.
	ErrStateChanged = errors.New("persistence: state changed")
)
