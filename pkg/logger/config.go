package logger

import (
	"log/slog"
	"strings"
)

// Config carries the environment-driven logging settings shared by the
// queuer and runner binaries. An empty File keeps output on stdout.
type Config struct {
	Level         string `env:"LOG_LEVEL" envDefault:"info"`
	Format        Format `env:"LOG_FORMAT" envDefault:"json"`
	File          string `env:"LOG_FILE"`
	FileMaxSizeMB int    `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"100"`
	FileBackups   int    `env:"LOG_FILE_BACKUPS" envDefault:"3"`
}

// Options converts the configuration into factory options for New.
func (c Config) Options() []Option {
	opts := []Option{WithLevel(ParseLevel(c.Level))}

	switch c.Format {
	case FormatText:
		opts = append(opts, WithTextFormatter())
	default:
		opts = append(opts, WithJSONFormatter())
	}

	if c.File != "" {
		opts = append(opts, WithFile(c.File, c.FileMaxSizeMB, c.FileBackups))
	}
	return opts
}

// ParseLevel maps a level name to its slog.Level. Unknown names fall back to
// info so a typo in LOG_LEVEL never silences errors.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
