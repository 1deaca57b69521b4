// Package logger configures the logrus logger shared by the engine and CLI.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Formats accepted by Options.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configures New.
type Options struct {
	Level  string // logrus level name; empty falls back to LOG_LEVEL, then info
	Format string // json or text
	Output io.Writer

	// File, when set, replaces Output with a size-rotated log file.
	File       string
	MaxAgeDays int
}

// New builds a logger from opts.
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		out = &lumberjack.Logger{
			Filename: opts.File,
			MaxAge:   opts.MaxAgeDays,
			MaxSize:  100,
			Compress: true,
		}
	}
	l.SetOutput(out)

	levelStr := opts.Level
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}
	if levelStr == "" {
		levelStr = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	l.SetLevel(lvl)

	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case FormatText:
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return l, nil
}

// Discard returns an entry that drops everything. Used as the default when
// no logger is configured.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

// WithComponent tags entries with the emitting component.
func WithComponent(l logrus.FieldLogger, component string) *logrus.Entry {
	return l.WithField("component", component)
}
