// Package prune implements explicit log and run-record retention. Unlike the
// best-effort pruning that runs after the monitor, this service reports
// deletion failures to the operator.
package prune

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fadamon/fadacron/internal/conventions"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/logfile"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/storage"
)

// ServiceConfig is the configuration for the prune service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
	// Now is the time source, for tests. Defaults to time.Now.
	Now func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Prune"})
	return nil
}

// Service prunes expired log files and run records.
type Service struct {
	repo   storage.Repository
	logger log.Logger
	now    func() time.Time
}

// NewService creates a new prune service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    cfg.Now,
	}, nil
}

// Request contains the parameters for pruning.
type Request struct {
	// LogsDir is the log directory to prune.
	LogsDir string
	// RetentionDays is the retention cutoff in days. Defaults to 30.
	RetentionDays int
	// DryRun lists what would be removed without deleting anything.
	DryRun bool
}

func (r *Request) defaults() error {
	if r.LogsDir == "" {
		return fmt.Errorf("logs dir is required: %w", model.ErrNotValid)
	}
	if r.RetentionDays == 0 {
		r.RetentionDays = conventions.DefaultRetentionDays
	}
	if r.RetentionDays < 0 {
		return fmt.Errorf("retention days must be positive: %w", model.ErrNotValid)
	}
	return nil
}

// Result contains the outcome of a prune.
type Result struct {
	// Cutoff is the retention cutoff that was applied.
	Cutoff time.Time
	// Logs are the log files removed (or that would be removed on dry run).
	Logs []string
	// Runs is how many run records were deleted (always 0 on dry run).
	Runs int
}

// Run prunes log files older than the retention cutoff and the run records
// started before it.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if err := req.defaults(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -req.RetentionDays)

	candidates, err := logfile.CandidatesOlderThan(req.LogsDir, cutoff)
	if err != nil {
		return nil, fmt.Errorf("could not scan log files: %w", err)
	}

	if req.DryRun {
		s.logger.Infof("Dry run: %d log files would be removed", len(candidates))
		return &Result{Cutoff: cutoff, Logs: candidates}, nil
	}

	for _, path := range candidates {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("could not remove %s: %w", path, err)
		}
		s.logger.Debugf("Removed expired log file %s", path)
	}

	deletedRuns, err := s.repo.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("could not delete run records: %w", err)
	}

	s.logger.Infof("Pruned %d log files and %d run records", len(candidates), deletedRuns)

	return &Result{Cutoff: cutoff, Logs: candidates, Runs: deletedRuns}, nil
}
