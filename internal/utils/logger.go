// internal/utils/logger.go
package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/sales-ledger/internal/config"
)

// NewLogger builds the process logger. Production defaults to JSON output.
func NewLogger(cfg config.LogConfig, environment string) *logrus.Logger {
	return newLogger(cfg, environment, os.Stderr)
}

func newLogger(cfg config.LogConfig, environment string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	format := cfg.Format
	if format == "" {
		format = "text"
		if environment == "production" {
			format = "json"
		}
	}
	if format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}
