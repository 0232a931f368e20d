package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobmate/jobhunter-service/internal/model"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgCreateTable = `CREATE TABLE IF NOT EXISTS jobs (
		id          BIGSERIAL PRIMARY KEY,
		job_id      VARCHAR(50) NOT NULL,
		company     VARCHAR(300),
		created_at  DATE NOT NULL,
		url         TEXT,
		title       TEXT,
		description TEXT
	)`
	pgCreateIndex = `CREATE INDEX IF NOT EXISTS jobs_job_id_idx ON jobs (job_id)`
)

// PostgresStore implements Store on PostgreSQL through pgx.
type PostgresStore struct {
	db   DBTX
	opts options
}

// NewPostgresStore wraps a pool (or any DBTX).
func NewPostgresStore(db DBTX, opts ...Option) *PostgresStore {
	return &PostgresStore{db: db, opts: buildOptions(opts)}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{pgCreateTable, pgCreateIndex} {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return &StorageError{Op: "ensure schema", Err: err}
		}
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, jobID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE job_id = $1)`,
		jobID,
	).Scan(&exists)
	if err != nil {
		return false, &StorageError{Op: "exists", Err: err}
	}
	return exists, nil
}

func (s *PostgresStore) Insert(ctx context.Context, job model.StoredJob) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO jobs (job_id, company, created_at, url, title, description)
		 SELECT $1::varchar, $2::varchar, $3::date, $4::text, $5::text, $6::text
		 WHERE NOT EXISTS (
		   SELECT 1 FROM jobs WHERE job_id = $1::varchar
		 )`,
		job.JobID, job.Company, job.CreatedAt, job.URL, job.Title, job.Description,
	)
	if err != nil {
		return false, &StorageError{Op: "insert", Err: err}
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) PruneOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := model.RetentionCutoff(s.opts.now(), retentionDays)
	tag, err := s.db.Exec(ctx, `DELETE FROM jobs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, &StorageError{Op: "prune", Err: err}
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&n); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return n, nil
}

func (s *PostgresStore) Sample(ctx context.Context, limit int) ([]model.JobSummary, error) {
	rows, err := s.db.Query(ctx,
		`SELECT COALESCE(title, ''), created_at FROM jobs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, &StorageError{Op: "sample", Err: err}
	}
	defer rows.Close()

	out := make([]model.JobSummary, 0, limit)
	for rows.Next() {
		var j model.JobSummary
		if err := rows.Scan(&j.Title, &j.CreatedAt); err != nil {
			return nil, &StorageError{Op: "sample scan", Err: err}
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "sample", Err: err}
	}
	return out, nil
}

// InTx begins a transaction on the pool, or a savepoint when s is already
// bound to a pgx.Tx.
func (s *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &StorageError{Op: "begin", Err: err}
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(&PostgresStore{db: tx, opts: s.opts}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return &StorageError{Op: "commit", Err: err}
	}
	committed = true
	return nil
}
