// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/elonfeng/mediavault/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing to stderr, and to a rotated file when
// cfg.File is set. An unknown level falls back to info.
func New(cfg config.LogConfig) zerolog.Logger {
	var w io.Writer = os.Stderr
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	if cfg.File == "" {
		return build(cfg, w)
	}

	logger := build(cfg, zerolog.MultiLevelWriter(w, newFileWriter(cfg)))
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		logger.Warn().Err(err).Str("file", cfg.File).Msg("could not create log directory")
	}
	return logger
}

// NewWithWriter is New with an explicit destination and no log file.
func NewWithWriter(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return build(cfg, w)
}

// newFileWriter always writes JSON lines; console formatting is for
// terminals only.
func newFileWriter(cfg config.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

func build(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
