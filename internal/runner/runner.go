// Package runner launches the monitor script through the package runner of an
// isolated Python environment. There is no shell-style "activation": the venv
// executables directory is prepended to an explicit search path and the child
// receives an explicit environment map.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fadamon/fadacron/internal/conventions"
	"github.com/fadamon/fadacron/internal/envfile"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
)

// Config is the configuration for the Runner.
type Config struct {
	// BaseDir is the project directory the monitor runs in.
	BaseDir string
	// VenvDir is the virtual environment directory. Defaults to
	// <BaseDir>/.venv.
	VenvDir string
	// Bin is the package runner executable name. Defaults to "uv".
	Bin string
	// Logger is the application logger.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base dir is required")
	}
	if c.VenvDir == "" {
		c.VenvDir = conventions.VenvDirPath(c.BaseDir)
	}
	if c.Bin == "" {
		c.Bin = conventions.DefaultRunner
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "runner.Runner"})
	return nil
}

// Runner knows how to resolve and invoke the package runner.
type Runner struct {
	baseDir string
	venvDir string
	bin     string
	logger  log.Logger
}

// New creates a new Runner.
func New(cfg Config) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Runner{
		baseDir: cfg.BaseDir,
		venvDir: cfg.VenvDir,
		bin:     cfg.Bin,
		logger:  cfg.Logger,
	}, nil
}

// Bin returns the package runner executable name.
func (r *Runner) Bin() string { return r.bin }

// VenvDir returns the virtual environment directory.
func (r *Runner) VenvDir() string { return r.venvDir }

// CheckVenv verifies the virtual environment directory exists.
func (r *Runner) CheckVenv() error {
	info, err := os.Stat(r.venvDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("virtual environment not found at %s: %w", r.venvDir, model.ErrSetup)
	}
	return nil
}

// SearchPath returns the executable search path for the monitor: the venv
// bin directory followed by the wrapper's own PATH.
func (r *Runner) SearchPath() string {
	venvBin := filepath.Join(r.venvDir, conventions.VenvBinDir)
	if path := os.Getenv("PATH"); path != "" {
		return venvBin + string(os.PathListSeparator) + path
	}
	return venvBin
}

// Resolve locates the package runner executable on the search path.
func (r *Runner) Resolve() (string, error) {
	for _, dir := range filepath.SplitList(r.SearchPath()) {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, r.bin)
		if isExecutable(p) {
			r.logger.Debugf("Resolved %s to %s", r.bin, p)
			return p, nil
		}
	}

	return "", fmt.Errorf("%s is not installed or not in PATH: %w", r.bin, model.ErrSetup)
}

// RunOpts contains options for a single monitor invocation.
type RunOpts struct {
	// Script is the monitor script path, relative to the base directory.
	Script string
	// Env is the full environment for the child process.
	Env map[string]string
	// Stdout receives the child's standard output.
	Stdout io.Writer
	// Stderr receives the child's standard error.
	Stderr io.Writer
}

// Result contains the outcome of a monitor invocation.
type Result struct {
	// ExitCode is the child process termination status.
	ExitCode int
	// PID is the child process ID.
	PID int
}

// Run invokes the monitor script through the package runner and blocks until
// the child terminates. A non-zero child exit code is not an error: it is
// reported in Result so the caller can propagate it.
func (r *Runner) Run(ctx context.Context, opts RunOpts) (*Result, error) {
	if opts.Script == "" {
		return nil, fmt.Errorf("script is required: %w", model.ErrNotValid)
	}

	bin, err := r.Resolve()
	if err != nil {
		return nil, err
	}

	// uv launches scripts as `uv run <script>`.
	cmd := exec.CommandContext(ctx, bin, "run", opts.Script)
	cmd.Dir = r.baseDir
	cmd.Env = envfile.ToOSEnv(opts.Env)
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	// Own process group so wrapper signals don't tear down the monitor
	// mid-write.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	r.logger.Debugf("Invoking %s run %s in %s", bin, opts.Script, r.baseDir)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start monitor: %w", err)
	}

	pid := cmd.Process.Pid

	err = cmd.Wait()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("monitor invocation failed: %w", err)
		}

		exitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			// Shell-style status for signal deaths.
			exitCode = 128 + int(ws.Signal())
		}
	}

	return &Result{ExitCode: exitCode, PID: pid}, nil
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// ScriptPath returns the absolute script path for preflight checks.
func (r *Runner) ScriptPath(script string) string {
	if strings.HasPrefix(script, string(os.PathSeparator)) {
		return script
	}
	return filepath.Join(r.baseDir, script)
}
