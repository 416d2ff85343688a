// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup applies the standard formatter and, when path is non-empty, mirrors
// log output to that file in addition to stderr.
func Setup(verbose bool, path string) error {
	logrus.SetLevel(logrus.InfoLevel)
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	return nil
}
