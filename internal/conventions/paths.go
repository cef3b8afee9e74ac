package conventions

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBaseDir is the default project directory name (relative to home).
	DefaultBaseDir = "fada"
	// LogsDir is the subdirectory for per-run log files.
	LogsDir = "logs"
	// VenvDir is the virtual environment directory name.
	VenvDir = ".venv"
	// VenvBinDir is the subdirectory inside the venv holding executables.
	VenvBinDir = "bin"
	// EnvFile is the optional environment file name.
	EnvFile = ".env"
	// ConfigFile is the optional YAML configuration file name.
	ConfigFile = "fadacron.yaml"
	// DBFile is the run history database file name.
	DBFile = "fadacron.db"

	// DefaultScript is the monitor script the wrapper invokes.
	DefaultScript = "fada_monitor.py"
	// DefaultRunner is the package runner used to launch the script.
	DefaultRunner = "uv"

	// LogFilePrefix is the prefix of per-day log file names.
	LogFilePrefix = "monitor_"
	// LogFileExt is the extension of per-day log file names.
	LogFileExt = ".log"
	// LogDateLayout is the date layout embedded in log file names.
	LogDateLayout = "20060102"

	// DefaultRetentionDays is the default log and run-record retention.
	DefaultRetentionDays = 30
)

// LogFileName returns the per-day log file name for a given time,
// e.g. "monitor_20260829.log".
func LogFileName(t time.Time) string {
	return LogFilePrefix + t.Format(LogDateLayout) + LogFileExt
}

// LogsDirPath returns the logs directory for a base directory.
func LogsDirPath(baseDir string) string {
	return filepath.Join(baseDir, LogsDir)
}

// LogFilePath returns the full per-day log file path for a base directory.
func LogFilePath(baseDir string, t time.Time) string {
	return filepath.Join(LogsDirPath(baseDir), LogFileName(t))
}

// VenvDirPath returns the virtual environment directory for a base directory.
func VenvDirPath(baseDir string) string {
	return filepath.Join(baseDir, VenvDir)
}

// VenvBinPath returns the venv executables directory for a base directory.
func VenvBinPath(baseDir string) string {
	return filepath.Join(VenvDirPath(baseDir), VenvBinDir)
}

// EnvFilePath returns the environment file path for a base directory.
func EnvFilePath(baseDir string) string {
	return filepath.Join(baseDir, EnvFile)
}

// DBFilePath returns the run history database path for a base directory.
func DBFilePath(baseDir string) string {
	return filepath.Join(baseDir, DBFile)
}

// ParseLogTime extracts the date from a per-day log file name. It returns an
// error when the name doesn't follow the wrapper's naming convention, so
// retention never touches files the wrapper didn't create.
func ParseLogTime(name string) (time.Time, error) {
	if !strings.HasPrefix(name, LogFilePrefix) || !strings.HasSuffix(name, LogFileExt) {
		return time.Time{}, fmt.Errorf("%q does not match the log naming convention", name)
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, LogFilePrefix), LogFileExt)
	t, err := time.Parse(LogDateLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q does not match the log naming convention: %w", name, err)
	}

	return t, nil
}
