package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"bloggenie-server/internal/domain"
)

// AppLogger implements the domain.Logger interface on top of hclog
type AppLogger struct {
	hl hclog.Logger
}

// Options configures a logger instance
type Options struct {
	Name   string
	Level  string
	Format string // "text" or "json"
	Output io.Writer
}

// NewLogger creates a new logger instance writing text lines to stdout
func NewLogger(levelStr string) domain.Logger {
	return New(Options{Name: "bloggenie", Level: levelStr})
}

// New creates a logger from explicit options
func New(opts Options) *AppLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	return &AppLogger{
		hl: hclog.New(&hclog.LoggerOptions{
			Name:       opts.Name,
			Level:      parseLogLevel(opts.Level),
			Output:     out,
			JSONFormat: strings.EqualFold(opts.Format, "json"),
		}),
	}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.hl.Info(msg, fields...)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	l.hl.Error(msg, append([]interface{}{"error", err}, fields...)...)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.hl.Debug(msg, fields...)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.hl.Warn(msg, fields...)
}

// parseLogLevel converts string log level to an hclog level, defaulting to info
func parseLogLevel(levelStr string) hclog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "warning":
		return hclog.Warn
	case "":
		return hclog.Info
	}
	level := hclog.LevelFromString(levelStr)
	if level == hclog.NoLevel {
		return hclog.Info
	}
	return level
}
