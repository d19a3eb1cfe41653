package logger

import (
	"log"
	"strings"
	"sync/atomic"
)

const (
	levelDebug int32 = iota
	levelInfo
	levelWarn
	levelError
)

var minLevel atomic.Int32

func init() {
	minLevel.Store(levelInfo)
}

// SetLevel sets the minimum level that gets logged. Unknown names fall
// back to info.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		minLevel.Store(levelDebug)
	case "warn", "warning":
		minLevel.Store(levelWarn)
	case "error":
		minLevel.Store(levelError)
	default:
		minLevel.Store(levelInfo)
	}
}

func logAt(level int32, prefix, format string, args ...interface{}) {
	if level < minLevel.Load() {
		return
	}
	log.Printf(prefix+format, args...)
}

// Debug logs debug messages
func Debug(format string, args ...interface{}) {
	logAt(levelDebug, "DEBUG: ", format, args...)
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	logAt(levelInfo, "INFO: ", format, args...)
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	logAt(levelWarn, "WARN: ", format, args...)
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	logAt(levelError, "ERROR: ", format, args...)
}
