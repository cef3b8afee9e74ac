// Package history lists recorded monitor runs.
package history

import (
	"context"
	"fmt"

	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/storage"
)

// ServiceConfig is the configuration for the history service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.History"})
	return nil
}

// Service lists recorded runs.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new history service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for listing runs.
type Request struct {
	// Limit caps how many runs are returned, 0 means all.
	Limit int
}

// Run returns recorded runs, newest first.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Run, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative: %w", model.ErrNotValid)
	}

	runs, err := s.repo.ListRuns(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	s.logger.Debugf("Listed %d runs", len(runs))

	return runs, nil
}
