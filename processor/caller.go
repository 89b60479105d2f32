package processor

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/plainlog/plainlog/core"
)

// Caller returns a processor that annotates records with the call site:
// function, file and line. The call site is the first stack frame outside
// the logging machinery; skip moves further up from there. Resolving
// frames costs a few microseconds per record, so it is meant as a
// preprocessor on loggers that need it, not as a default.
func Caller(skip int) core.Processor {
	return func(r *core.Record) *core.Record {
		pcs := make([]uintptr, 24)
		n := runtime.Callers(2, pcs)
		frames := runtime.CallersFrames(pcs[:n])

		remaining := skip
		for {
			frame, more := frames.Next()
			if !internalFrame(frame.Function) {
				if remaining > 0 {
					remaining--
				} else {
					r.Extra = append(r.Extra,
						core.String("function", frame.Function),
						core.String("file", filepath.Base(frame.File)),
						core.Int("line", frame.Line),
					)
					return r
				}
			}
			if !more {
				return r
			}
		}
	}
}

// internalFrame reports whether a function belongs to the logging
// machinery between the user call and this processor.
func internalFrame(fn string) bool {
	return strings.Contains(fn, "plainlog/processor.") ||
		strings.Contains(fn, "plainlog/logger.") ||
		strings.Contains(fn, "plainlog/core.") ||
		strings.HasPrefix(fn, "log/slog.")
}

// ProcessInfo returns a processor adding the process id and executable
// name to each record.
func ProcessInfo() core.Processor {
	pid := os.Getpid()
	name := filepath.Base(os.Args[0])

	return func(r *core.Record) *core.Record {
		r.Extra = append(r.Extra,
			core.Int("process_id", pid),
			core.String("process_name", name),
		)
		return r
	}
}

// Hostname returns a processor adding the machine's hostname. The name is
// resolved once at construction.
func Hostname() core.Processor {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown-" + strconv.Itoa(os.Getpid())
	}

	return func(r *core.Record) *core.Record {
		r.Extra = append(r.Extra, core.String("hostname", host))
		return r
	}
}
