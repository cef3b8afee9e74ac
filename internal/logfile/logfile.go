// Package logfile manages the wrapper's per-day log files: one append-mode
// file per calendar day that captures banners, setup errors and the monitor's
// own output for a run.
package logfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadamon/fadacron/internal/conventions"
)

const bannerLine = "================================================================================"

const timestampLayout = "2006-01-02 15:04:05"

// Writer is an append-mode handle on the per-day log file. It implements
// io.Writer so the monitor's stdout/stderr can be wired to it directly.
type Writer struct {
	f    *os.File
	path string
}

// Open opens (creating if needed) the per-day log file for the given time,
// creating the logs directory when missing. Opening the same day twice
// appends to the same file.
func Open(logsDir string, now time.Time) (*Writer, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create logs directory: %w", err)
	}

	path := filepath.Join(logsDir, conventions.LogFileName(now))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	return &Writer{f: f, path: path}, nil
}

// Path returns the log file path.
func (w *Writer) Path() string { return w.path }

func (w *Writer) Write(p []byte) (int, error) { return w.f.Write(p) }

// Close closes the log file.
func (w *Writer) Close() error { return w.f.Close() }

// Banner writes the fixed run delimiter line.
func (w *Writer) Banner() {
	fmt.Fprintln(w.f, bannerLine)
}

// Started writes the timestamped run header.
func (w *Writer) Started(now time.Time) {
	fmt.Fprintf(w.f, "Started at %s\n", now.Format(timestampLayout))
}

// Completed writes the monitor completion line with the captured exit code,
// followed by the closing banner and a blank line.
func (w *Writer) Completed(exitCode int) {
	fmt.Fprintf(w.f, "Monitor completed with exit code: %d\n", exitCode)
	w.Banner()
	fmt.Fprintln(w.f)
}

// Errorf writes a setup error line followed by the closing banner, so aborted
// runs are delimited the same way as completed ones.
func (w *Writer) Errorf(format string, args ...any) {
	fmt.Fprintf(w.f, "ERROR: "+format+"\n", args...)
	w.Banner()
	fmt.Fprintln(w.f)
}

// CandidatesOlderThan returns the log files in logsDir whose modification
// time is before the cutoff. Only files matching the wrapper's naming
// convention are considered.
func CandidatesOlderThan(logsDir string, cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read logs directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := conventions.ParseLogTime(e.Name()); err != nil {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			candidates = append(candidates, filepath.Join(logsDir, e.Name()))
		}
	}

	return candidates, nil
}

// Prune deletes log files older than the cutoff. It is best effort: all
// errors are suppressed and the removed paths are returned, so it can run
// after the monitor without ever affecting the wrapper's exit status.
func Prune(logsDir string, cutoff time.Time) []string {
	candidates, err := CandidatesOlderThan(logsDir, cutoff)
	if err != nil {
		return nil
	}

	var removed []string
	for _, path := range candidates {
		if err := os.Remove(path); err != nil {
			continue
		}
		removed = append(removed, path)
	}

	return removed
}

// IsLogFile reports whether a file name follows the wrapper's log naming
// convention.
func IsLogFile(name string) bool {
	if !strings.HasPrefix(name, conventions.LogFilePrefix) {
		return false
	}
	_, err := conventions.ParseLogTime(name)
	return err == nil
}
