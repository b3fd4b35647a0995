package types

// RunMode distinguishes local development from a deployed environment;
// only affects default logging verbosity.
type RunMode string

const (
	ModeLocal      RunMode = "local"
	ModeProduction RunMode = "production"
)

// LogLevel selects the zap logging configuration preset.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
