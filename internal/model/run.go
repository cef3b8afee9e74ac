package model

import "time"

// RunStatus represents the outcome of a single monitor run.
type RunStatus string

const (
	// RunStatusSucceeded indicates the monitor ran and exited with code 0.
	RunStatusSucceeded RunStatus = "succeeded"
	// RunStatusFailed indicates the monitor ran and exited with a non-zero code.
	RunStatusFailed RunStatus = "failed"
	// RunStatusSetupFailed indicates a precondition failed before the monitor
	// could be invoked.
	RunStatusSetupFailed RunStatus = "setup_failed"
)

// Run represents a single recorded invocation of the monitor.
type Run struct {
	ID         string
	Script     string
	Status     RunStatus
	ExitCode   int
	LogPath    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Duration returns the wall time of the run, zero if it never finished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// StatusForExitCode maps a monitor exit code to a run status.
func StatusForExitCode(code int) RunStatus {
	if code == 0 {
		return RunStatusSucceeded
	}
	return RunStatusFailed
}
