package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/jobhunter-service/internal/db"
	"jobmate/jobhunter-service/internal/model"
	"jobmate/jobhunter-service/internal/store"
)

func newSQLiteStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "jobs.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	s := store.NewSQLiteStore(conn, store.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, s.EnsureSchema(ctx))
	return s
}

func jobCreated(id string, daysAgo int) model.StoredJob {
	return model.StoredJob{
		JobID:     id,
		Company:   "Acme",
		CreatedAt: fixedNow.AddDate(0, 0, -daysAgo),
		URL:       "https://remotive.com/remote-jobs/" + id,
		Title:     "job " + id,
	}
}

func TestSQLiteStore_EnsureSchemaIsIdempotent(t *testing.T) {
	s := newSQLiteStore(t)
	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, s.EnsureSchema(context.Background()))
}

func TestSQLiteStore_InsertAndExists(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	exists, err := s.Exists(ctx, "1")
	require.NoError(t, err)
	assert.False(t, exists)

	inserted, err := s.Insert(ctx, jobCreated("1", 0))
	require.NoError(t, err)
	assert.True(t, inserted)

	exists, err = s.Exists(ctx, "1")
	require.NoError(t, err)
	assert.True(t, exists)

	// The NOT EXISTS guard refuses a second row for the same job_id.
	inserted, err = s.Insert(ctx, jobCreated("1", 0))
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSQLiteStore_PruneRemovesOnlyStrictlyOlderRows(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	for id, daysAgo := range map[string]int{"today": 0, "d13": 13, "d14": 14, "d20": 20} {
		_, err := s.Insert(ctx, jobCreated(id, daysAgo))
		require.NoError(t, err)
	}

	pruned, err := s.PruneOlderThan(ctx, 14)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	for id, want := range map[string]bool{"today": true, "d13": true, "d14": true, "d20": false} {
		got, err := s.Exists(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got, "row %s", id)
	}
}

func TestSQLiteStore_Sample_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	for _, j := range []model.StoredJob{jobCreated("a", 5), jobCreated("b", 1), jobCreated("c", 3)} {
		_, err := s.Insert(ctx, j)
		require.NoError(t, err)
	}

	got, err := s.Sample(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "job b", got[0].Title)
	assert.Equal(t, "job c", got[1].Title)
	assert.Equal(t, time.Date(2024, time.March, 19, 0, 0, 0, 0, time.UTC), got[0].CreatedAt)
}

func TestSQLiteStore_InTx_RollbackLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)
	_, err := s.Insert(ctx, jobCreated("old", 30))
	require.NoError(t, err)

	boom := errors.New("fetch failed")
	err = s.InTx(ctx, func(tx store.Store) error {
		if _, err := tx.PruneOlderThan(ctx, 14); err != nil {
			return err
		}
		if _, err := tx.Insert(ctx, jobCreated("new", 0)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	exists, err := s.Exists(ctx, "old")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSQLiteStore_Savepoint_IsolatesFailure(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t)

	err := s.InTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.InTx(ctx, func(sp store.Store) error {
			_, err := sp.Insert(ctx, jobCreated("kept", 0))
			return err
		}))

		failed := tx.InTx(ctx, func(sp store.Store) error {
			if _, err := sp.Insert(ctx, jobCreated("discarded", 0)); err != nil {
				return err
			}
			return errors.New("listing rejected")
		})
		assert.Error(t, failed)
		return nil
	})
	require.NoError(t, err)

	kept, err := s.Exists(ctx, "kept")
	require.NoError(t, err)
	assert.True(t, kept)

	discarded, err := s.Exists(ctx, "discarded")
	require.NoError(t, err)
	assert.False(t, discarded)
}
