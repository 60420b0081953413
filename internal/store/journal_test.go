package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestJournalRecordsActionsInOrder(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(openTemp(t), "run-1")
	require.NoError(t, j.StartRun(ctx, "reset", 7))

	require.NoError(t, j.RecordAction(ctx, Action{Kind: ActionOffline, PostID: 11, JobID: 7, BoardID: 2}))
	require.NoError(t, j.RecordAction(ctx, Action{Kind: ActionDelete, PostID: 11, JobID: 7}))
	require.NoError(t, j.RecordAction(ctx, Action{Kind: ActionDuplicate, PostID: 12, JobID: 7, Location: "Lima, Peru", Outcome: OutcomeSkipped, Detail: "geocode"}))

	got, err := j.Actions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ActionOffline, got[0].Kind)
	assert.Equal(t, OutcomeDone, got[1].Outcome)
	assert.Equal(t, OutcomeSkipped, got[2].Outcome)
	assert.Equal(t, "Lima, Peru", got[2].Location)
	assert.False(t, got[0].At.IsZero())

	other, err := j.Actions(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestJournalErrorsAndRuns(t *testing.T) {
	ctx := context.Background()
	j := NewJournal(openTemp(t), "run-9")
	require.NoError(t, j.StartRun(ctx, "replicate", 3))
	require.NoError(t, j.RecordError(ctx, "operation failed: delete post 1", map[string]any{"status": 500}))
	require.NoError(t, j.FinishRun(ctx, errors.New("boom")))

	errs, err := j.Errors(ctx, "run-9")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.EqualValues(t, 500, errs[0].Fields["status"])

	runs, err := j.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Outcome)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, 3, runs[0].JobID)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTemp(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestCleanupOldRuns(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	j := NewJournal(db, "old")
	require.NoError(t, j.StartRun(ctx, "reset", 1))
	require.NoError(t, j.RecordAction(ctx, Action{Kind: ActionDelete, PostID: 1, JobID: 1}))

	n, err := CleanupOldRuns(ctx, db.Pool, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = CleanupOldRuns(ctx, db.Pool, -time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	acts, err := j.Actions(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, acts)
}
