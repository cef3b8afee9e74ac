// Package run implements the wrapper's single-shot execution: precondition
// checks, environment preparation, monitor invocation, log capture, run
// recording and log retention.
package run

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fadamon/fadacron/internal/conventions"
	"github.com/fadamon/fadacron/internal/envfile"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/logfile"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/runner"
	"github.com/fadamon/fadacron/internal/storage"
)

// Invoker knows how to check the execution environment and invoke the monitor.
type Invoker interface {
	CheckVenv() error
	SearchPath() string
	Bin() string
	VenvDir() string
	Resolve() (string, error)
	Run(ctx context.Context, opts runner.RunOpts) (*runner.Result, error)
}

var _ Invoker = (*runner.Runner)(nil)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Invoker    Invoker
	Repository storage.Repository
	Logger     log.Logger
	// Now is the time source, for tests. Defaults to time.Now.
	Now func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Invoker == nil {
		return fmt.Errorf("invoker is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})
	return nil
}

// Service handles a single wrapper run of the monitor.
type Service struct {
	invoker Invoker
	repo    storage.Repository
	logger  log.Logger
	now     func() time.Time
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		invoker: cfg.Invoker,
		repo:    cfg.Repository,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}, nil
}

// Request contains the parameters for a wrapper run.
type Request struct {
	// BaseDir is the project directory. It must exist.
	BaseDir string
	// Script is the monitor script, relative to BaseDir. Defaults to the
	// convention script.
	Script string
	// EnvFile is the optional environment file path. Defaults to
	// <BaseDir>/.env.
	EnvFile string
	// LogsDir is the log destination. Defaults to <BaseDir>/logs.
	LogsDir string
	// RetentionDays is how long log files are kept. Defaults to 30.
	RetentionDays int
}

func (r *Request) defaults() error {
	if r.BaseDir == "" {
		return fmt.Errorf("base dir is required: %w", model.ErrNotValid)
	}
	if r.Script == "" {
		r.Script = conventions.DefaultScript
	}
	if r.EnvFile == "" {
		r.EnvFile = conventions.EnvFilePath(r.BaseDir)
	}
	if r.LogsDir == "" {
		r.LogsDir = conventions.LogsDirPath(r.BaseDir)
	}
	if r.RetentionDays == 0 {
		r.RetentionDays = conventions.DefaultRetentionDays
	}
	if r.RetentionDays < 0 {
		return fmt.Errorf("retention days must be positive: %w", model.ErrNotValid)
	}
	return nil
}

// Result contains the outcome of a wrapper run. The wrapper process must
// terminate with ExitCode.
type Result struct {
	// RunID is the recorded run ID.
	RunID string
	// ExitCode is the monitor's exit code, or 1 when setup failed.
	ExitCode int
	// SetupFailed is true when a precondition failed before invocation.
	SetupFailed bool
	// LogPath is the per-day log file that captured the run.
	LogPath string
	// PrunedLogs is how many old log files were removed after the run.
	PrunedLogs int
}

// Run executes the monitor once. Setup failures after the log file is open
// are reported in the Result (exit code 1), not as errors: they are part of
// the wrapper's normal contract and are already recorded in the log. Errors
// are returned only when the run could not even produce a log entry.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.defaults(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	// The base directory gates everything else: all paths are relative to it.
	if info, err := os.Stat(req.BaseDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("base directory %s not accessible: %w", req.BaseDir, model.ErrSetup)
	}

	startedAt := s.now()
	runID := ulid.MustNew(ulid.Timestamp(startedAt), ulid.DefaultEntropy()).String()

	w, err := logfile.Open(req.LogsDir, startedAt)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %s: %w", err, model.ErrSetup)
	}
	defer w.Close()

	w.Banner()
	w.Started(startedAt)

	logger := s.logger.WithValues(log.Kv{"run-id": runID})
	logger.Infof("Monitor run started, logging to %s", w.Path())

	// Optional environment file, absence is fine.
	fileEnv, err := envfile.Load(req.EnvFile)
	if err != nil {
		w.Errorf("%s", err)
		return s.setupFailed(ctx, logger, w, req, runID, startedAt), nil
	}

	if err := s.invoker.CheckVenv(); err != nil {
		w.Errorf("Virtual environment not found at %s", s.invoker.VenvDir())
		return s.setupFailed(ctx, logger, w, req, runID, startedAt), nil
	}

	if _, err := s.invoker.Resolve(); err != nil {
		w.Errorf("%s is not installed or not in PATH", s.invoker.Bin())
		return s.setupFailed(ctx, logger, w, req, runID, startedAt), nil
	}

	// Explicit child environment: inherited process env, overlaid with the
	// env file, with the venv executables first on PATH.
	childEnv := envfile.Merge(
		envfile.FromOSEnv(os.Environ()),
		fileEnv,
		map[string]string{"PATH": s.invoker.SearchPath()},
	)

	invokeResult, err := s.invoker.Run(ctx, runner.RunOpts{
		Script: req.Script,
		Env:    childEnv,
		Stdout: w,
		Stderr: w,
	})
	if err != nil {
		w.Errorf("Monitor invocation failed: %s", err)
		return s.setupFailed(ctx, logger, w, req, runID, startedAt), nil
	}

	exitCode := invokeResult.ExitCode
	finishedAt := s.now()
	w.Completed(exitCode)

	s.recordRun(ctx, logger, model.Run{
		ID:         runID,
		Script:     req.Script,
		Status:     model.StatusForExitCode(exitCode),
		ExitCode:   exitCode,
		LogPath:    w.Path(),
		StartedAt:  startedAt,
		FinishedAt: &finishedAt,
	})

	pruned := s.prune(logger, req, startedAt)

	logger.Infof("Monitor completed with exit code %d", exitCode)

	return &Result{
		RunID:      runID,
		ExitCode:   exitCode,
		LogPath:    w.Path(),
		PrunedLogs: pruned,
	}, nil
}

// setupFailed records a precondition failure and builds its result. The
// failure is already in the log file, the exit code is always 1.
func (s *Service) setupFailed(ctx context.Context, logger log.Logger, w *logfile.Writer, req Request, runID string, startedAt time.Time) *Result {
	logger.Errorf("Setup failed, monitor was not invoked")

	s.recordRun(ctx, logger, model.Run{
		ID:        runID,
		Script:    req.Script,
		Status:    model.RunStatusSetupFailed,
		ExitCode:  1,
		LogPath:   w.Path(),
		StartedAt: startedAt,
	})

	return &Result{
		RunID:       runID,
		ExitCode:    1,
		SetupFailed: true,
		LogPath:     w.Path(),
	}
}

// recordRun stores the run in the repository. Best effort: a storage failure
// must never change the exit code the wrapper propagates.
func (s *Service) recordRun(ctx context.Context, logger log.Logger, run model.Run) {
	if err := s.repo.CreateRun(ctx, run); err != nil {
		logger.Warningf("Could not record run: %s", err)
	}
}

// prune removes expired log files after the run. Best effort as well.
func (s *Service) prune(logger log.Logger, req Request, now time.Time) int {
	cutoff := now.AddDate(0, 0, -req.RetentionDays)
	removed := logfile.Prune(req.LogsDir, cutoff)
	if len(removed) > 0 {
		logger.Debugf("Pruned %d expired log files", len(removed))
	}
	return len(removed)
}
