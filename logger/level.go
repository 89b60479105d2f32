package logger

import "github.com/plainlog/plainlog/core"

// Level re-exports core.Level for convenience
type Level = core.Level

const (
	TraceLevel    = core.TraceLevel
	DebugLevel    = core.DebugLevel
	InfoLevel     = core.InfoLevel
	WarningLevel  = core.WarningLevel
	ErrorLevel    = core.ErrorLevel
	CriticalLevel = core.CriticalLevel
)

// ParseLevel converts a level name to a Level.
func ParseLevel(s string) (Level, error) {
	return core.ParseLevel(s)
}
