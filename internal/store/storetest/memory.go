// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobmate/jobhunter-service/internal/model"
	"jobmate/jobhunter-service/internal/store"
)

// Memory is a transactional in-memory store.Store. InTx snapshots the rows
// and restores them when fn fails, at any nesting depth. Set the Err fields
// to inject failures. Safe for concurrent use.
type Memory struct {
	Now       func() time.Time
	InsertErr func(job model.StoredJob) error
	ExistsErr error
	BeginErr  error
	SchemaErr error

	mu          sync.Mutex
	rows        []model.StoredJob
	nextID      int64
	insertCalls []string
	schemaCalls int
	commits     int
	rollbacks   int
}

var _ store.Store = (*Memory)(nil)

// NewMemory returns an empty store using time.Now.
func NewMemory() *Memory {
	return &Memory{Now: time.Now}
}

// Seed inserts rows directly, bypassing the NOT EXISTS guard.
func (m *Memory) Seed(jobs ...model.StoredJob) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range jobs {
		m.nextID++
		j.ID = m.nextID
		m.rows = append(m.rows, j)
	}
}

// Rows returns a copy of the stored rows in insertion order.
func (m *Memory) Rows() []model.StoredJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.StoredJob(nil), m.rows...)
}

// InsertCalls lists the job ids passed to Insert, including rolled back ones.
func (m *Memory) InsertCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.insertCalls...)
}

// SchemaCalls counts EnsureSchema invocations.
func (m *Memory) SchemaCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schemaCalls
}

// TxCounts returns how many transactions or savepoints were committed and
// rolled back.
func (m *Memory) TxCounts() (commits, rollbacks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits, m.rollbacks
}

func (m *Memory) EnsureSchema(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaCalls++
	return m.SchemaErr
}

func (m *Memory) Exists(_ context.Context, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, &store.StorageError{Op: "exists", Err: m.ExistsErr}
	}
	return m.existsLocked(jobID), nil
}

func (m *Memory) existsLocked(jobID string) bool {
	for _, r := range m.rows {
		if r.JobID == jobID {
			return true
		}
	}
	return false
}

func (m *Memory) Insert(_ context.Context, job model.StoredJob) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls = append(m.insertCalls, job.JobID)
	if m.InsertErr != nil {
		if err := m.InsertErr(job); err != nil {
			return false, &store.StorageError{Op: "insert", Err: err}
		}
	}
	if m.existsLocked(job.JobID) {
		return false, nil
	}
	m.nextID++
	job.ID = m.nextID
	m.rows = append(m.rows, job)
	return true, nil
}

func (m *Memory) PruneOlderThan(_ context.Context, retentionDays int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := model.RetentionCutoff(m.Now(), retentionDays)
	kept := m.rows[:0:0]
	var pruned int64
	for _, r := range m.rows {
		if model.IsExpired(r.CreatedAt, cutoff) {
			pruned++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return pruned, nil
}

func (m *Memory) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *Memory) Sample(_ context.Context, limit int) ([]model.JobSummary, error) {
	m.mu.Lock()
	rows := append([]model.StoredJob(nil), m.rows...)
	m.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].ID > rows[j].ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]model.JobSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.JobSummary{Title: r.Title, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (m *Memory) InTx(_ context.Context, fn func(store.Store) error) error {
	m.mu.Lock()
	if m.BeginErr != nil {
		m.mu.Unlock()
		return &store.StorageError{Op: "begin", Err: m.BeginErr}
	}
	snapshot := append([]model.StoredJob(nil), m.rows...)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.rows = snapshot // ids are not reused, like a sequence
		m.rollbacks++
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.commits++
	m.mu.Unlock()
	return nil
}
