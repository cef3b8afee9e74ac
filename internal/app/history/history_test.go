package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fadamon/fadacron/internal/app/history"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	tests := map[string]struct {
		config history.ServiceConfig
		expErr bool
	}{
		"valid config should create service": {
			config: history.ServiceConfig{
				Repository: &storagemock.MockRepository{},
				Logger:     log.Noop,
			},
		},
		"missing repository should fail": {
			config: history.ServiceConfig{Logger: log.Noop},
			expErr: true,
		},
		"nil logger should default to noop": {
			config: history.ServiceConfig{Repository: &storagemock.MockRepository{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			svc, err := history.NewService(test.config)

			if test.expErr {
				require.Error(t, err)
				require.Nil(t, svc)
			} else {
				require.NoError(t, err)
				require.NotNil(t, svc)
			}
		})
	}
}

func TestService_Run(t *testing.T) {
	startedAt := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{ID: "01JD0000000000000000000002", Script: "fada_monitor.py", Status: model.RunStatusSucceeded, StartedAt: startedAt},
		{ID: "01JD0000000000000000000001", Script: "fada_monitor.py", Status: model.RunStatusFailed, ExitCode: 1, StartedAt: startedAt.Add(-time.Hour)},
	}

	tests := map[string]struct {
		mock    func(m *storagemock.MockRepository)
		req     history.Request
		expRuns []model.Run
		expErr  bool
	}{
		"should return the repository runs": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListRuns", mock.Anything, 20).Once().Return(runs, nil)
			},
			req:     history.Request{Limit: 20},
			expRuns: runs,
		},
		"repository error should fail": {
			mock: func(m *storagemock.MockRepository) {
				m.On("ListRuns", mock.Anything, 0).Once().Return(nil, fmt.Errorf("boom"))
			},
			req:    history.Request{},
			expErr: true,
		},
		"negative limit should fail without hitting the repository": {
			mock:   func(m *storagemock.MockRepository) {},
			req:    history.Request{Limit: -1},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := &storagemock.MockRepository{}
			test.mock(repo)

			svc, err := history.NewService(history.ServiceConfig{Repository: repo, Logger: log.Noop})
			require.NoError(t, err)

			got, err := svc.Run(context.Background(), test.req)

			if test.expErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, test.expRuns, got)
			}

			repo.AssertExpectations(t)
		})
	}
}
