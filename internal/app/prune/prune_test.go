package prune_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fadamon/fadacron/internal/app/prune"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/storage/storagemock"
)

func writeAgedLog(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	return path
}

func newService(t *testing.T, repo *storagemock.MockRepository, now time.Time) *prune.Service {
	t.Helper()

	svc, err := prune.NewService(prune.ServiceConfig{
		Repository: repo,
		Logger:     log.Noop,
		Now:        func() time.Time { return now },
	})
	require.NoError(t, err)

	return svc
}

func TestNewService(t *testing.T) {
	t.Run("Missing repository should fail", func(t *testing.T) {
		_, err := prune.NewService(prune.ServiceConfig{})
		require.Error(t, err)
	})
}

func TestRun(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -30)

	t.Run("Should remove expired logs and run records", func(t *testing.T) {
		logsDir := t.TempDir()
		old := writeAgedLog(t, logsDir, "monitor_20200101.log", now.AddDate(0, 0, -45))
		recent := writeAgedLog(t, logsDir, "monitor_20260828.log", now.AddDate(0, 0, -1))

		repo := &storagemock.MockRepository{}
		repo.On("DeleteRunsBefore", mock.Anything, cutoff).Once().Return(3, nil)

		result, err := newService(t, repo, now).Run(context.Background(), prune.Request{LogsDir: logsDir})
		require.NoError(t, err)

		assert.Equal(t, []string{old}, result.Logs)
		assert.Equal(t, 3, result.Runs)
		assert.Equal(t, cutoff, result.Cutoff)

		_, statErr := os.Stat(old)
		assert.True(t, os.IsNotExist(statErr))
		_, statErr = os.Stat(recent)
		assert.NoError(t, statErr)

		repo.AssertExpectations(t)
	})

	t.Run("Dry run should not delete anything", func(t *testing.T) {
		logsDir := t.TempDir()
		old := writeAgedLog(t, logsDir, "monitor_20200101.log", now.AddDate(0, 0, -45))

		repo := &storagemock.MockRepository{}

		result, err := newService(t, repo, now).Run(context.Background(), prune.Request{LogsDir: logsDir, DryRun: true})
		require.NoError(t, err)

		assert.Equal(t, []string{old}, result.Logs)
		assert.Zero(t, result.Runs)

		_, statErr := os.Stat(old)
		assert.NoError(t, statErr)

		repo.AssertExpectations(t)
	})

	t.Run("Custom retention should move the cutoff", func(t *testing.T) {
		logsDir := t.TempDir()
		old := writeAgedLog(t, logsDir, "monitor_20260820.log", now.AddDate(0, 0, -9))

		repo := &storagemock.MockRepository{}
		repo.On("DeleteRunsBefore", mock.Anything, now.AddDate(0, 0, -7)).Once().Return(0, nil)

		result, err := newService(t, repo, now).Run(context.Background(), prune.Request{LogsDir: logsDir, RetentionDays: 7})
		require.NoError(t, err)

		assert.Equal(t, []string{old}, result.Logs)
		repo.AssertExpectations(t)
	})

	t.Run("Negative retention should fail", func(t *testing.T) {
		repo := &storagemock.MockRepository{}

		_, err := newService(t, repo, now).Run(context.Background(), prune.Request{LogsDir: t.TempDir(), RetentionDays: -1})
		require.Error(t, err)
	})

	t.Run("Missing logs dir should succeed with nothing to prune", func(t *testing.T) {
		repo := &storagemock.MockRepository{}
		repo.On("DeleteRunsBefore", mock.Anything, cutoff).Once().Return(0, nil)

		result, err := newService(t, repo, now).Run(context.Background(), prune.Request{LogsDir: filepath.Join(t.TempDir(), "nope")})
		require.NoError(t, err)
		assert.Empty(t, result.Logs)
	})
}
