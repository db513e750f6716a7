// Package log provides module-scoped structured logging for the emulator
// core, backed by logrus. Most call sites should use the *Z family
// (DebugZ/InfoZ/...) for allocation-light structured fields; the classic
// printf-like family (Debugf/Infof/...) remains for quick diagnostics.
package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

// SetOutput redirects all log output (used by hosts that want to capture
// PPU trace output to a file, mirroring the teacher's --execlog flag).
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// SetJSONFormat switches the sink to JSON lines, useful when piping
// --log output into external tooling.
func SetJSONFormat() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
