package storage

import (
	"context"
	"time"

	"github.com/fadamon/fadacron/internal/model"
)

// Repository is the interface for run history persistence.
type Repository interface {
	CreateRun(ctx context.Context, r model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// ListRuns returns runs ordered by start time, newest first. A limit of 0
	// returns all runs.
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
	// DeleteRunsBefore deletes runs started before the cutoff and returns how
	// many were removed.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
