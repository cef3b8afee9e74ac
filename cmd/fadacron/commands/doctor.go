package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/fadamon/fadacron/internal/app/doctor"
	"github.com/fadamon/fadacron/internal/model"
	"github.com/fadamon/fadacron/internal/runner"
)

type DoctorCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	script     string
	runnerBin  string
	envFile    string
	configFile string
}

// NewDoctorCommand returns the doctor command.
func NewDoctorCommand(rootCmd *RootCommand, app *kingpin.Application) *DoctorCommand {
	c := &DoctorCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("doctor", "Run preflight checks for the monitor environment.")
	c.Cmd.Flag("script", "Monitor script to check, relative to the base dir.").StringVar(&c.script)
	c.Cmd.Flag("runner", "Package runner executable to check.").StringVar(&c.runnerBin)
	c.Cmd.Flag("env-file", "Environment file to check.").StringVar(&c.envFile)
	c.Cmd.Flag("config", "Path to a wrapper configuration YAML file.").Short('f').StringVar(&c.configFile)

	return c
}

func (c DoctorCommand) Name() string { return c.Cmd.FullCommand() }

func (c DoctorCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	out := c.rootCmd.Stdout
	baseDir := c.rootCmd.BaseDir

	cfg, err := loadWrapperConfig(ctx, baseDir, c.configFile)
	if err != nil {
		return err
	}

	r, err := runner.New(runner.Config{
		BaseDir: baseDir,
		VenvDir: resolvePath(baseDir, cfg.VenvDir),
		Bin:     firstNonEmpty(c.runnerBin, cfg.Runner),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create runner: %w", err)
	}

	svc, err := doctor.NewService(doctor.ServiceConfig{
		Checker: r,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Run(ctx, doctor.Request{
		BaseDir: baseDir,
		Script:  firstNonEmpty(c.script, cfg.Script),
		EnvFile: resolvePath(baseDir, firstNonEmpty(c.envFile, cfg.EnvFile)),
		LogsDir: resolvePath(baseDir, cfg.LogsDir),
	})
	if err != nil {
		return fmt.Errorf("could not run preflight checks: %w", err)
	}

	// Print results.
	fmt.Fprintf(out, "Checking monitor environment in %s...\n", baseDir)
	for _, r := range results {
		fmt.Fprintf(out, "  %s %-18s %s\n", getStatusIcon(r.Status), r.ID, r.Message)
	}

	// Summary.
	_, warnings, errors := model.CountByStatus(results)
	fmt.Fprintln(out)
	if errors == 0 && warnings == 0 {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		var summary []string
		if errors > 0 {
			summary = append(summary, fmt.Sprintf("%d error(s)", errors))
		}
		if warnings > 0 {
			summary = append(summary, fmt.Sprintf("%d warning(s)", warnings))
		}
		fmt.Fprintf(out, "%s\n", joinWithComma(summary))
	}

	if errors > 0 {
		return fmt.Errorf("preflight checks failed with %d error(s)", errors)
	}

	return nil
}

func getStatusIcon(status model.CheckStatus) string {
	switch status {
	case model.CheckStatusOK:
		return "OK"
	case model.CheckStatusWarning:
		return "!!"
	case model.CheckStatusError:
		return "XX"
	default:
		return "??"
	}
}

func joinWithComma(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += ", " + parts[i]
	}
	return result
}
