package core

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// Level represents the severity of a log record. The numeric scale leaves
// room between the built-in levels for custom ones.
type Level int16

const (
	// TraceLevel for very fine-grained tracing output
	TraceLevel Level = 5
	// DebugLevel for detailed debugging information
	DebugLevel Level = 10
	// InfoLevel for general informational messages
	InfoLevel Level = 20
	// WarningLevel for warning messages
	WarningLevel Level = 30
	// ErrorLevel for error messages
	ErrorLevel Level = 40
	// CriticalLevel for errors after which the application cannot continue
	CriticalLevel Level = 50

	// levelInfinite is the cached minimum level of a Core without handlers.
	levelInfinite Level = math.MaxInt16
)

// ErrUnknownLevel is returned by ParseLevel for unrecognized level names.
var ErrUnknownLevel = fmt.Errorf("unknown log level")

var (
	levelMu      sync.RWMutex
	levelNames   = map[Level]string{}
	levelNumbers = map[string]Level{}
)

// RegisterLevel maps a custom level number to a name. The name becomes the
// String() representation and is accepted by ParseLevel (case-insensitive).
// Registering one of the built-in numbers overrides its name.
func RegisterLevel(level Level, name string) {
	levelMu.Lock()
	defer levelMu.Unlock()
	levelNames[level] = name
	levelNumbers[strings.ToUpper(name)] = level
}

// String returns the name of the level. Custom registered levels take
// precedence over the built-in names.
func (l Level) String() string {
	levelMu.RLock()
	name, ok := levelNames[l]
	levelMu.RUnlock()
	if ok {
		return name
	}

	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarningLevel:
		return "WARNING"
	case ErrorLevel:
		return "ERROR"
	case CriticalLevel:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. Full names, registered custom
// names and the single-letter shortcuts "t", "d", "i", "w", "e", "c" are
// accepted, case-insensitively.
func ParseLevel(s string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))

	levelMu.RLock()
	level, ok := levelNumbers[upper]
	levelMu.RUnlock()
	if ok {
		return level, nil
	}

	switch upper {
	case "TRACE", "T":
		return TraceLevel, nil
	case "DEBUG", "D":
		return DebugLevel, nil
	case "INFO", "I":
		return InfoLevel, nil
	case "WARNING", "WARN", "W":
		return WarningLevel, nil
	case "ERROR", "E":
		return ErrorLevel, nil
	case "CRITICAL", "C":
		return CriticalLevel, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}
