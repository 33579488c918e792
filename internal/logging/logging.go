// Package logging provides the structured logger shared by the store and
// tracer packages, styled after the free-function Debugf/Errorf helpers the
// teacher codebase logs through.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetVerbose raises the logger to Debug level, for --verbose style flags.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

// SetQuiet drops the logger to Error level, for --quiet style flags. Takes
// precedence over whatever SetVerbose set, so callers should apply it
// after (cmd.go's PersistentPreRunE rejects passing both flags together).
func SetQuiet(quiet bool) {
	if quiet {
		log.SetLevel(logrus.ErrorLevel)
	}
}

// Debugf logs at debug level. Used for the high-frequency per-syscall
// tracer chatter that should stay silent unless asked for.
func Debugf(format string, args ...any) {
	log.Debugf(format, args...)
}

// Infof logs at info level.
func Infof(format string, args ...any) {
	log.Infof(format, args...)
}

// Warnf logs at warn level. Used for non-fatal per-syscall tracer failures
// that don't abort the traced run.
func Warnf(format string, args ...any) {
	log.Warnf(format, args...)
}

// Errorf logs at error level. Used for fatal run errors right before a
// non-zero exit.
func Errorf(format string, args ...any) {
	log.Errorf(format, args...)
}
