// Package monitoring provides the verbosity-gated diagnostic logger used by
// the analysis packages.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Verbosity levels accepted by SetVerbosity.
const (
	LevelQuiet   = 0
	LevelInfo    = 1
	LevelVerbose = 2
)

// Logf is the package-level diagnostic sink. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var verbosity atomic.Int32

func init() {
	verbosity.Store(LevelInfo)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbosity sets the level consulted by Infof and Debugf. Values are
// clamped to the LevelQuiet..LevelVerbose range.
func SetVerbosity(level int) {
	switch {
	case level < LevelQuiet:
		level = LevelQuiet
	case level > LevelVerbose:
		level = LevelVerbose
	}
	verbosity.Store(int32(level))
}

// Verbosity returns the current level.
func Verbosity() int {
	return int(verbosity.Load())
}

// Enabled reports whether messages at level would be emitted.
func Enabled(level int) bool {
	return Verbosity() >= level
}

// Infof logs progress messages (level 1 and above).
func Infof(format string, v ...interface{}) {
	if Enabled(LevelInfo) {
		Logf(format, v...)
	}
}

// Debugf logs per-record detail (level 2).
func Debugf(format string, v ...interface{}) {
	if Enabled(LevelVerbose) {
		Logf(format, v...)
	}
}

// Warnf always logs, regardless of verbosity.
func Warnf(format string, v ...interface{}) {
	Logf("warning: "+format, v...)
}
