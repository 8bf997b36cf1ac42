package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
)

// LogrusLevel maps a configured level name to a logrus level. Unknown names
// map to error.
func LogrusLevel(level string) logrus.Level {
	switch level {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger returns a logger at level writing to path, or to stderr when path
// is empty. The returned closer releases the log file.
func NewLogger(level, path string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetLevel(LogrusLevel(level))
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if path == "" {
		logger.SetOutput(os.Stderr)
		return logger, nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create log dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open log file")
	}
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	logger.SetOutput(f)
	return logger, f, nil
}
