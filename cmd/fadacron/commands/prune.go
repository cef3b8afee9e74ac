package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fadamon/fadacron/internal/app/prune"
	"github.com/fadamon/fadacron/internal/storage/sqlite"
)

type PruneCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	retentionDays int
	configFile    string
	dryRun        bool
}

// NewPruneCommand returns the prune command.
func NewPruneCommand(rootCmd *RootCommand, app *kingpin.Application) *PruneCommand {
	c := &PruneCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("prune", "Remove log files and run records past the retention window.")
	c.Cmd.Flag("retention-days", "Retention window in days.").IntVar(&c.retentionDays)
	c.Cmd.Flag("config", "Path to a wrapper configuration YAML file.").Short('f').StringVar(&c.configFile)
	c.Cmd.Flag("dry-run", "List what would be removed without deleting anything.").BoolVar(&c.dryRun)

	return c
}

func (c PruneCommand) Name() string { return c.Cmd.FullCommand() }

func (c PruneCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout
	baseDir := c.rootCmd.BaseDir

	cfg, err := loadWrapperConfig(ctx, baseDir, c.configFile)
	if err != nil {
		return err
	}

	// Initialize storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.RunDBPath(),
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}

	// Create prune service.
	svc, err := prune.NewService(prune.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, prune.Request{
		LogsDir:       resolvePath(baseDir, cfg.LogsDir),
		RetentionDays: firstPositive(c.retentionDays, cfg.RetentionDays),
		DryRun:        c.dryRun,
	})
	if err != nil {
		return fmt.Errorf("could not prune: %w", err)
	}

	// Print output.
	for _, path := range result.Logs {
		fmt.Fprintln(out, path)
	}
	if c.dryRun {
		fmt.Fprintf(out, "Dry run: %d log files would be removed (cutoff %s)\n", len(result.Logs), result.Cutoff.Format("2006-01-02"))
		return nil
	}
	fmt.Fprintf(out, "Removed %d log files and %d run records (cutoff %s)\n", len(result.Logs), result.Runs, result.Cutoff.Format("2006-01-02"))

	return nil
}
