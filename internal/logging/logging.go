// Package logging centralizes the client's structured logger, so session
// and download progress is field-based instead of printf strings.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the package-level logger every component logs through. It starts
// quiet (io.Discard) so library use of this package never prints without
// being asked to.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// SetVerbose toggles whether Log writes to stderr.
func SetVerbose(v bool) {
	if v {
		Log.SetOutput(os.Stderr)
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetOutput(io.Discard)
	}
}
