package logfile_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fadamon/fadacron/internal/logfile"
)

var day = time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

func TestOpen(t *testing.T) {
	t.Run("Should create the logs directory and a dated file", func(t *testing.T) {
		logsDir := filepath.Join(t.TempDir(), "logs")

		w, err := logfile.Open(logsDir, day)
		require.NoError(t, err)
		t.Cleanup(func() { _ = w.Close() })

		assert.Equal(t, filepath.Join(logsDir, "monitor_20260829.log"), w.Path())
		_, err = os.Stat(w.Path())
		require.NoError(t, err)
	})

	t.Run("Opening the same day twice should append to the same file", func(t *testing.T) {
		logsDir := t.TempDir()

		w1, err := logfile.Open(logsDir, day)
		require.NoError(t, err)
		w1.Started(day)
		require.NoError(t, w1.Close())

		w2, err := logfile.Open(logsDir, day.Add(6*time.Hour))
		require.NoError(t, err)
		w2.Started(day.Add(6 * time.Hour))
		require.NoError(t, w2.Close())

		assert.Equal(t, w1.Path(), w2.Path())

		content, err := os.ReadFile(w1.Path())
		require.NoError(t, err)
		assert.Contains(t, string(content), "Started at 2026-08-29 10:30:00")
		assert.Contains(t, string(content), "Started at 2026-08-29 16:30:00")
	})
}

func TestRunDelimiters(t *testing.T) {
	logsDir := t.TempDir()

	w, err := logfile.Open(logsDir, day)
	require.NoError(t, err)

	w.Banner()
	w.Started(day)
	_, err = w.Write([]byte("monitor output\n"))
	require.NoError(t, err)
	w.Completed(0)
	require.NoError(t, w.Close())

	content, err := os.ReadFile(w.Path())
	require.NoError(t, err)

	s := string(content)
	assert.Contains(t, s, "Started at 2026-08-29 10:30:00")
	assert.Contains(t, s, "monitor output\n")
	assert.Contains(t, s, "Monitor completed with exit code: 0")
}

func TestErrorf(t *testing.T) {
	logsDir := t.TempDir()

	w, err := logfile.Open(logsDir, day)
	require.NoError(t, err)

	w.Errorf("Virtual environment not found at %s", "/srv/fada/.venv")
	require.NoError(t, w.Close())

	content, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "ERROR: Virtual environment not found at /srv/fada/.venv")
	assert.NotContains(t, string(content), "Monitor completed")
}

func writeAgedLog(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	return path
}

func TestPrune(t *testing.T) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -30)

	t.Run("Old matching files should be removed, recent and foreign files kept", func(t *testing.T) {
		logsDir := t.TempDir()

		old := writeAgedLog(t, logsDir, "monitor_20200101.log", now.AddDate(0, 0, -45))
		recent := writeAgedLog(t, logsDir, "monitor_20260828.log", now.AddDate(0, 0, -1))
		foreign := writeAgedLog(t, logsDir, "notes.txt", now.AddDate(0, 0, -45))

		removed := logfile.Prune(logsDir, cutoff)
		assert.Equal(t, []string{old}, removed)

		_, err := os.Stat(old)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(recent)
		assert.NoError(t, err)
		_, err = os.Stat(foreign)
		assert.NoError(t, err)
	})

	t.Run("Missing logs directory should be a no-op", func(t *testing.T) {
		removed := logfile.Prune(filepath.Join(t.TempDir(), "nope"), cutoff)
		assert.Empty(t, removed)
	})
}

func TestCandidatesOlderThan(t *testing.T) {
	now := time.Now()
	logsDir := t.TempDir()

	old := writeAgedLog(t, logsDir, "monitor_20200101.log", now.AddDate(0, 0, -45))
	writeAgedLog(t, logsDir, "monitor_20260828.log", now.AddDate(0, 0, -1))

	got, err := logfile.CandidatesOlderThan(logsDir, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, []string{old}, got)
}

func TestIsLogFile(t *testing.T) {
	assert.True(t, logfile.IsLogFile("monitor_20260829.log"))
	assert.False(t, logfile.IsLogFile("monitor_2026.log"))
	assert.False(t, logfile.IsLogFile("other_20260829.log"))
	assert.False(t, logfile.IsLogFile("monitor_20260829.txt"))
}
