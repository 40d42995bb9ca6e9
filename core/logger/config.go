package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the encoding (console, json).
	Format string `mapstructure:"format" default:"console"`
	// File is an extra output path receiving the full log. Empty disables it.
	File string `mapstructure:"file" default:"log_validador.txt"`
}
