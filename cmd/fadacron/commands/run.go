package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"

	apprun "github.com/fadamon/fadacron/internal/app/run"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/runner"
	"github.com/fadamon/fadacron/internal/storage"
	"github.com/fadamon/fadacron/internal/storage/memory"
	"github.com/fadamon/fadacron/internal/storage/sqlite"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	script        string
	runnerBin     string
	envFile       string
	configFile    string
	retentionDays int
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the monitor once and exit with its exit code.")
	c.Cmd.Flag("script", "Monitor script to run, relative to the base dir.").StringVar(&c.script)
	c.Cmd.Flag("runner", "Package runner executable used to launch the script.").StringVar(&c.runnerBin)
	c.Cmd.Flag("env-file", "Environment file loaded into the monitor's environment.").StringVar(&c.envFile)
	c.Cmd.Flag("config", "Path to a wrapper configuration YAML file.").Short('f').StringVar(&c.configFile)
	c.Cmd.Flag("retention-days", "Days to keep old log files.").IntVar(&c.retentionDays)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	baseDir := c.rootCmd.BaseDir

	// The base dir gates everything, including the run history database
	// that lives inside it: nothing may be created when it is missing.
	if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
		return fmt.Errorf("base directory %s not accessible: %w", baseDir, model.ErrSetup)
	}

	cfg, err := loadWrapperConfig(ctx, baseDir, c.configFile)
	if err != nil {
		return err
	}

	// Open the run history repository. Best effort, like recording itself.
	repo, closeRepo := newRunRepository(ctx, c.rootCmd.RunDBPath(), logger)
	defer closeRepo()

	// Initialize the monitor runner.
	r, err := runner.New(runner.Config{
		BaseDir: baseDir,
		VenvDir: resolvePath(baseDir, cfg.VenvDir),
		Bin:     firstNonEmpty(c.runnerBin, cfg.Runner),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	// Create run service.
	svc, err := apprun.NewService(apprun.ServiceConfig{
		Invoker:    r,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, apprun.Request{
		BaseDir:       baseDir,
		Script:        firstNonEmpty(c.script, cfg.Script),
		EnvFile:       resolvePath(baseDir, firstNonEmpty(c.envFile, cfg.EnvFile)),
		LogsDir:       resolvePath(baseDir, cfg.LogsDir),
		RetentionDays: firstPositive(c.retentionDays, cfg.RetentionDays),
	})
	if err != nil {
		return fmt.Errorf("could not run monitor: %w", err)
	}

	// Exit with the monitor's exit code (1 on setup failures).
	os.Exit(result.ExitCode)
	return nil
}

// newRunRepository opens the run history database. The history layer must
// never stop the monitor: a broken database degrades to an in-memory
// repository, the run is simply not persisted.
func newRunRepository(ctx context.Context, dbPath string, logger log.Logger) (storage.Repository, func()) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: dbPath,
		Logger: logger,
	})
	if err == nil {
		return repo, func() { repo.Close() }
	}

	logger.Warningf("Could not open run history database %s, runs will not be recorded: %s", dbPath, err)
	mem, _ := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
	return mem, func() {}
}
