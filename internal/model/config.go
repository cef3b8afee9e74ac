package model

// WrapperConfig is the optional file-based configuration for the wrapper.
// Empty fields fall back to the wrapper's conventions; relative paths are
// resolved against the base directory.
type WrapperConfig struct {
	Script        string
	Runner        string
	VenvDir       string
	LogsDir       string
	EnvFile       string
	RetentionDays int
}
