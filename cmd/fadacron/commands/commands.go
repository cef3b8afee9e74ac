package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/fadamon/fadacron/internal/conventions"
	"github.com/fadamon/fadacron/internal/log"
	"github.com/fadamon/fadacron/internal/model"
	storageio "github.com/fadamon/fadacron/internal/storage/io"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	BaseDir    string
	DBPath     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultBaseDir := filepath.Join(homedir.HomeDir(), conventions.DefaultBaseDir)
	app.Flag("base-dir", "Project directory holding the monitor, venv and logs.").Envar("FADACRON_BASE_DIR").Default(defaultBaseDir).StringVar(&c.BaseDir)
	app.Flag("db-path", "Path to the run history SQLite database file (defaults to <base-dir>/fadacron.db).").Envar("FADACRON_DB_PATH").StringVar(&c.DBPath)

	return c
}

// RunDBPath returns the run history database path, derived from the base dir
// when not set explicitly.
func (c *RootCommand) RunDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return conventions.DBFilePath(c.BaseDir)
}

// loadWrapperConfig loads the wrapper YAML configuration. An explicit path
// must exist, the conventional <base-dir>/fadacron.yaml is optional.
func loadWrapperConfig(ctx context.Context, baseDir, configFile string) (model.WrapperConfig, error) {
	path := configFile
	explicit := path != ""
	if !explicit {
		path = filepath.Join(baseDir, conventions.ConfigFile)
		if _, err := os.Stat(path); err != nil {
			return model.WrapperConfig{}, nil
		}
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return model.WrapperConfig{}, fmt.Errorf("could not resolve config path: %w", err)
		}
		path = absPath
	}

	configRepo := storageio.NewConfigYAMLRepository(os.DirFS("/"))
	cfg, err := configRepo.GetConfig(ctx, path[1:])
	if err != nil {
		return model.WrapperConfig{}, fmt.Errorf("could not load config: %w", err)
	}

	return cfg, nil
}

// resolvePath resolves a configured path against the base directory. Empty
// stays empty (conventions apply downstream), absolute paths win.
func resolvePath(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// firstNonEmpty returns the first non-empty value, used to layer flag values
// over file configuration.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
