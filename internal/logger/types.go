package logger

// Config defines the configuration for logging.
type Config struct {
	// Enabled writes logs to Path instead of stderr.
	Enabled bool `toml:"enabled"`
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	Path  string `toml:"path"`
	// MaxSize is the size in megabytes before the file is rotated.
	MaxSize    int  `toml:"max_size"`
	MaxBackups int  `toml:"max_backups"`
	MaxAge     int  `toml:"max_age"`
	Compress   bool `toml:"compress"`
}
