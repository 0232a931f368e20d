// Package store persists synchronized job listings.
//
// The jobs table has no unique constraint on job_id. Deduplication relies on
// the caller's Exists check plus a NOT EXISTS guard on the insert statement;
// two writers racing on the same job_id can still both insert. The service
// runs one cycle at a time, so this only matters if several instances share
// a database.
package store

import (
	"context"
	"fmt"
	"time"

	"jobmate/jobhunter-service/internal/model"
)

// Store is the record store used by the sync engine.
type Store interface {
	// EnsureSchema creates the jobs table and its job_id index if absent.
	EnsureSchema(ctx context.Context) error
	// Exists reports whether any row carries jobID.
	Exists(ctx context.Context, jobID string) (bool, error)
	// Insert appends job. It returns false when a row with the same job_id
	// was already present and nothing was written.
	Insert(ctx context.Context, job model.StoredJob) (bool, error)
	// PruneOlderThan deletes rows created strictly before today minus
	// retentionDays and returns how many went.
	PruneOlderThan(ctx context.Context, retentionDays int) (int64, error)
	Count(ctx context.Context) (int64, error)
	// Sample returns up to limit rows, newest first.
	Sample(ctx context.Context, limit int) ([]model.JobSummary, error)
	// InTx runs fn against a transaction-scoped Store and commits if fn
	// returns nil. Called on a Store that is already transactional it opens
	// a savepoint instead.
	InTx(ctx context.Context, fn func(Store) error) error
}

// StorageError wraps a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// Option configures a Store implementation.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used to compute the pruning cutoff.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
