package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/storage/sqlite"
)

func runFixture(id string, startedAt time.Time) model.Run {
	finishedAt := startedAt.Add(42 * time.Second)
	return model.Run{
		ID:         id,
		Script:     "fada_monitor.py",
		Status:     model.RunStatusSucceeded,
		ExitCode:   0,
		LogPath:    "/srv/fada/logs/monitor_20260829.log",
		StartedAt:  startedAt,
		FinishedAt: &finishedAt,
	}
}

func newRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.NewRepository(context.Background(), sqlite.RepositoryConfig{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: log.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	// Second precision, sqlite stores unix timestamps.
	now := time.Now().UTC().Truncate(time.Second)
	run := runFixture("01JD0000000000000000000001", now)
	require.NoError(t, repo.CreateRun(ctx, run))

	t.Run("Get should return the stored run", func(t *testing.T) {
		got, err := repo.GetRun(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run, *got)
	})

	t.Run("Duplicated IDs should fail", func(t *testing.T) {
		err := repo.CreateRun(ctx, run)
		assert.ErrorIs(t, err, model.ErrAlreadyExists)
	})

	t.Run("Missing run should fail", func(t *testing.T) {
		_, err := repo.GetRun(ctx, "does-not-exist")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestSetupFailedRun(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	run := model.Run{
		ID:        "01JD0000000000000000000001",
		Script:    "fada_monitor.py",
		Status:    model.RunStatusSetupFailed,
		ExitCode:  1,
		LogPath:   "/srv/fada/logs/monitor_20260829.log",
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.CreateRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSetupFailed, got.Status)
	assert.Nil(t, got.FinishedAt)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	oldest := runFixture("01JD0000000000000000000001", now.Add(-2*time.Hour))
	middle := runFixture("01JD0000000000000000000002", now.Add(-1*time.Hour))
	newest := runFixture("01JD0000000000000000000003", now)
	for _, r := range []model.Run{oldest, middle, newest} {
		require.NoError(t, repo.CreateRun(ctx, r))
	}

	t.Run("Should order newest first", func(t *testing.T) {
		got, err := repo.ListRuns(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, []model.Run{newest, middle, oldest}, got)
	})

	t.Run("Should honor the limit", func(t *testing.T) {
		got, err := repo.ListRuns(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []model.Run{newest}, got)
	})
}

func TestDeleteRunsBefore(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	old := runFixture("01JD0000000000000000000001", now.AddDate(0, 0, -45))
	recent := runFixture("01JD0000000000000000000002", now.AddDate(0, 0, -1))
	require.NoError(t, repo.CreateRun(ctx, old))
	require.NoError(t, repo.CreateRun(ctx, recent))

	deleted, err := repo.DeleteRunsBefore(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = repo.GetRun(ctx, old.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = repo.GetRun(ctx, recent.ID)
	assert.NoError(t, err)
}
