package cmd

import (
	"io"

	"github.com/sirupsen/logrus"
)

// logger is the process logger. Task code logs through entries derived from
// it carrying run_id, task and host fields.
var logger = logrus.New()

// configureLogger applies a level (debug|info|warn|error) and a format
// (text|json). Unknown levels fall back to info.
func configureLogger(l *logrus.Logger, level, format string, w io.Writer) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	l.SetOutput(w)
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
