// Package doctor implements preflight checks: it verifies the same
// preconditions as a real wrapper run without invoking the monitor.
package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fadamon/fadacron/internal/conventions"
	"github.com/fadamon/fadacron/internal/envfile"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
)

// Checker knows how to check the monitor execution environment.
type Checker interface {
	CheckVenv() error
	Resolve() (string, error)
	Bin() string
	VenvDir() string
	ScriptPath(script string) string
}

// ServiceConfig is the configuration for the doctor service.
type ServiceConfig struct {
	Checker Checker
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Checker == nil {
		return fmt.Errorf("checker is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Doctor"})
	return nil
}

// Service runs the wrapper preflight checks.
type Service struct {
	checker Checker
	logger  log.Logger
}

// NewService creates a new doctor service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		checker: cfg.Checker,
		logger:  cfg.Logger,
	}, nil
}

// Request contains the parameters for the preflight checks.
type Request struct {
	BaseDir string
	Script  string
	EnvFile string
	LogsDir string
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
	return nil
}

// Run executes all preflight checks and returns their results. It never
// short-circuits: every check runs so the operator sees the full picture.
func (s *Service) Run(ctx context.Context, req Request) ([]model.CheckResult, error) {
	if err := req.defaults(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	results := []model.CheckResult{
		s.checkBaseDir(req.BaseDir),
		s.checkLogsDir(req.LogsDir),
		s.checkVenv(),
		s.checkRunner(),
		s.checkScript(req.Script),
		s.checkEnvFile(req.EnvFile),
	}

	ok, warnings, errs := model.CountByStatus(results)
	s.logger.Debugf("Preflight finished: %d ok, %d warnings, %d errors", ok, warnings, errs)

	return results, nil
}

func (s *Service) checkBaseDir(baseDir string) model.CheckResult {
	info, err := os.Stat(baseDir)
	if err != nil || !info.IsDir() {
		return model.CheckResult{ID: "base_dir", Status: model.CheckStatusError, Message: fmt.Sprintf("base directory %s does not exist", baseDir)}
	}
	return model.CheckResult{ID: "base_dir", Status: model.CheckStatusOK, Message: baseDir}
}

func (s *Service) checkLogsDir(logsDir string) model.CheckResult {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return model.CheckResult{ID: "logs_dir", Status: model.CheckStatusError, Message: fmt.Sprintf("could not create %s: %s", logsDir, err)}
	}

	probe := filepath.Join(logsDir, ".write_test")
	f, err := os.Create(probe)
	if err != nil {
		return model.CheckResult{ID: "logs_dir", Status: model.CheckStatusError, Message: fmt.Sprintf("%s is not writable: %s", logsDir, err)}
	}
	f.Close()
	os.Remove(probe)

	return model.CheckResult{ID: "logs_dir", Status: model.CheckStatusOK, Message: fmt.Sprintf("%s is writable", logsDir)}
}

func (s *Service) checkVenv() model.CheckResult {
	if err := s.checker.CheckVenv(); err != nil {
		return model.CheckResult{ID: "venv_present", Status: model.CheckStatusError, Message: fmt.Sprintf("virtual environment not found at %s", s.checker.VenvDir())}
	}
	return model.CheckResult{ID: "venv_present", Status: model.CheckStatusOK, Message: s.checker.VenvDir()}
}

func (s *Service) checkRunner() model.CheckResult {
	bin, err := s.checker.Resolve()
	if err != nil {
		return model.CheckResult{ID: "runner_available", Status: model.CheckStatusError, Message: fmt.Sprintf("%s is not installed or not in PATH", s.checker.Bin())}
	}
	return model.CheckResult{ID: "runner_available", Status: model.CheckStatusOK, Message: bin}
}

func (s *Service) checkScript(script string) model.CheckResult {
	path := s.checker.ScriptPath(script)
	if _, err := os.Stat(path); err != nil {
		return model.CheckResult{ID: "script_present", Status: model.CheckStatusError, Message: fmt.Sprintf("monitor script %s does not exist", path)}
	}
	return model.CheckResult{ID: "script_present", Status: model.CheckStatusOK, Message: path}
}

func (s *Service) checkEnvFile(envFile string) model.CheckResult {
	if _, err := os.Stat(envFile); err != nil {
		return model.CheckResult{ID: "env_file", Status: model.CheckStatusWarning, Message: fmt.Sprintf("%s not present (optional)", envFile)}
	}

	env, err := envfile.Load(envFile)
	if err != nil {
		return model.CheckResult{ID: "env_file", Status: model.CheckStatusError, Message: err.Error()}
	}

	return model.CheckResult{ID: "env_file", Status: model.CheckStatusOK, Message: fmt.Sprintf("%s (%d variables)", envFile, len(env))}
}
