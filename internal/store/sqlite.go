package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jobmate/jobhunter-service/internal/model"
)

// created_at is stored as ISO text (YYYY-MM-DD) so string comparison orders
// dates correctly.
const sqliteCreateTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id VARCHAR(50) NOT NULL,
	company VARCHAR(300),
	created_at TEXT NOT NULL,
	url TEXT,
	title TEXT,
	description TEXT
);
CREATE INDEX IF NOT EXISTS jobs_job_id_idx ON jobs (job_id);
`

const sqliteDate = "2006-01-02"

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore implements Store on a database/sql SQLite handle.
type SQLiteStore struct {
	db    *sql.DB
	q     sqlQuerier
	tx    *sql.Tx
	depth int
	opts  options
}

// NewSQLiteStore wraps an open SQLite database.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{db: db, q: db, opts: buildOptions(opts)}
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, sqliteCreateTable); err != nil {
		return &StorageError{Op: "ensure schema", Err: err}
	}
	return nil
}

func (s *SQLiteStore) Exists(ctx context.Context, jobID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE job_id = ?)`, jobID,
	).Scan(&exists)
	if err != nil {
		return false, &StorageError{Op: "exists", Err: err}
	}
	return exists, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, job model.StoredJob) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO jobs (job_id, company, created_at, url, title, description)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM jobs WHERE job_id = ?)`,
		job.JobID,
		job.Company,
		job.CreatedAt.Format(sqliteDate),
		job.URL,
		job.Title,
		job.Description,
		job.JobID,
	)
	if err != nil {
		return false, &StorageError{Op: "insert", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &StorageError{Op: "insert", Err: err}
	}
	return n > 0, nil
}

func (s *SQLiteStore) PruneOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := model.RetentionCutoff(s.opts.now(), retentionDays)
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM jobs WHERE created_at < ?`, cutoff.Format(sqliteDate),
	)
	if err != nil {
		return 0, &StorageError{Op: "prune", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "prune", Err: err}
	}
	return n, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

func (s *SQLiteStore) Sample(ctx context.Context, limit int) ([]model.JobSummary, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT COALESCE(title, ''), created_at FROM jobs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, &StorageError{Op: "sample", Err: err}
	}
	defer rows.Close()

	out := make([]model.JobSummary, 0, limit)
	for rows.Next() {
		var (
			j       model.JobSummary
			created string
		)
		if err := rows.Scan(&j.Title, &created); err != nil {
			return nil, &StorageError{Op: "sample scan", Err: err}
		}
		if j.CreatedAt, err = time.Parse(sqliteDate, created); err != nil {
			return nil, &StorageError{Op: "sample scan", Err: err}
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "sample", Err: err}
	}
	return out, nil
}

// InTx opens a transaction, or a named savepoint when already inside one.
func (s *SQLiteStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.tx == nil {
		return s.inTx(ctx, fn)
	}
	return s.inSavepoint(ctx, fn)
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&SQLiteStore{db: s.db, q: tx, tx: tx, depth: 1, opts: s.opts}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	committed = true
	return nil
}

func (s *SQLiteStore) inSavepoint(ctx context.Context, fn func(Store) error) error {
	name := fmt.Sprintf("sp_%d", s.depth)
	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return &StorageError{Op: "savepoint", Err: err}
	}

	if err := fn(&SQLiteStore{db: s.db, q: s.tx, tx: s.tx, depth: s.depth + 1, opts: s.opts}); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr == nil {
			_, _ = s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
		}
		return err
	}
	if _, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return &StorageError{Op: "release savepoint", Err: err}
	}
	return nil
}
