package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LoggerOption represents a function that configures a logger
type LoggerOption func(*logrus.Logger)

// WithOutput sets the logger output
func WithOutput(w io.Writer) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithLevel sets the log level
func WithLevel(level logrus.Level) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetLevel(level)
	}
}

// WithFormatter sets the log formatter
func WithFormatter(formatter logrus.Formatter) LoggerOption {
	return func(l *logrus.Logger) {
		l.SetFormatter(formatter)
	}
}

// ConfigureLogger applies opts to an existing logger
func ConfigureLogger(logger *logrus.Logger, opts ...LoggerOption) *logrus.Logger {
	for _, opt := range opts {
		opt(logger)
	}
	return logger
}
