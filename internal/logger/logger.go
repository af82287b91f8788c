// Package logger builds the zerolog logger used by the command line tool.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mcncl/jsonsync/internal/config"
	"github.com/mcncl/jsonsync/internal/errors"
)

// LoggerBuilder provides a fluent interface for building loggers
type LoggerBuilder struct {
	level      zerolog.Level
	format     string
	filePath   string
	maxSizeMB  int
	maxBackups int
	console    io.Writer
}

// NewLoggerBuilder creates a builder that logs warnings and above to stderr
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		level:      zerolog.WarnLevel,
		format:     config.DefaultLogFormat,
		maxSizeMB:  config.DefaultLogMaxSizeMB,
		maxBackups: config.DefaultLogMaxBackups,
		console:    os.Stderr,
	}
}

// WithConfig applies the log section of the configuration
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	if level, err := ParseLevel(cfg.Level); err == nil {
		lb.level = level
	}
	if cfg.Format != "" {
		lb.format = strings.ToLower(cfg.Format)
	}
	lb.filePath = cfg.File
	if cfg.MaxSizeMB > 0 {
		lb.maxSizeMB = cfg.MaxSizeMB
	}
	if cfg.MaxBackups > 0 {
		lb.maxBackups = cfg.MaxBackups
	}
	return lb
}

// WithConsole redirects console output, e.g. to a buffer in tests
func (lb *LoggerBuilder) WithConsole(w io.Writer) *LoggerBuilder {
	lb.console = w
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (zerolog.Logger, error) {
	var writers []io.Writer

	if lb.console != nil {
		writers = append(writers, lb.consoleWriter(lb.console, false))
	}

	if lb.filePath != "" {
		if err := os.MkdirAll(filepath.Dir(lb.filePath), 0755); err != nil {
			return zerolog.Nop(), errors.NewConfigError("failed to create log directory", err)
		}
		file := &lumberjack.Logger{
			Filename:   lb.filePath,
			MaxSize:    lb.maxSizeMB,
			MaxBackups: lb.maxBackups,
			LocalTime:  true,
		}
		writers = append(writers, lb.consoleWriter(file, true))
	}

	if len(writers) == 0 {
		return zerolog.Nop(), nil
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.level).
		With().
		Timestamp().
		Logger(), nil
}

func (lb *LoggerBuilder) consoleWriter(w io.Writer, noColor bool) io.Writer {
	if lb.format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: time.RFC3339}
}

// ParseLevel converts a level name to a zerolog level. The empty string is warn.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.WarnLevel, nil
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.WarnLevel, errors.NewConfigError("unknown log level "+level, err)
	}
	return parsed, nil
}
