package migration

import (
	"errors"
	"fmt"
)

var (
	ErrMigrationFailed      = errors.New("migration execution failed")
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	ErrInvalidVersion       = errors.New("invalid migration version")
	ErrDuplicateVersion     = errors.New("duplicate migration version")
	// ErrChecksumMismatch means an applied migration file was edited afterwards.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

// StepError records which step of the schema upgrade failed. Source is the
// migration file for scan and parse steps, and the SQL text for database steps.
type StepError struct {
	Version string
	Source  string
	Step    string
	Err     error
}

func (e *StepError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("schema migration %s: %s: %v", e.Version, e.Step, e.Err)
	}
	return fmt.Sprintf("schema migration: %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepError(version, source, step string, err error) *StepError {
	return &StepError{Version: version, Source: source, Step: step, Err: err}
}
