package logger

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/plainlog/plainlog/core"
)

// Logger is a cheap, immutable producer-side handle bound to exactly one
// Core. Bind and Unbind return new handles sharing the same Core, so
// concurrently held Loggers never interfere.
type Logger struct {
	core        *core.Core
	name        string
	context     []core.Field
	pre         []core.Processor
	coarseClock bool
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	core        *core.Core
	name        string
	context     []core.Field
	pre         []core.Processor
	coarseClock bool
}

// NewBuilder creates a new logger builder for the given Core.
func NewBuilder(c *core.Core) *Builder {
	return &Builder{
		core: c,
		name: "root",
	}
}

// WithName sets the logger name carried by every record.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithFields adds bound context fields to all records.
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.context = append(b.context, fields...)
	return b
}

// WithPreprocessors appends preprocessors run in the caller's goroutine
// before enqueue.
func (b *Builder) WithPreprocessors(ps ...core.Processor) *Builder {
	b.pre = append(b.pre, ps...)
	return b
}

// WithCoarseClock makes the logger timestamp records from the cached
// coarse clock instead of calling time.Now per record.
func (b *Builder) WithCoarseClock(enabled bool) *Builder {
	b.coarseClock = enabled
	if enabled {
		core.StartCoarseClock()
	}
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	return &Logger{
		core:        b.core,
		name:        b.name,
		context:     b.context,
		pre:         b.pre,
		coarseClock: b.coarseClock,
	}
}

// Core returns the Core this logger pushes to.
func (l *Logger) Core() *core.Core {
	return l.core
}

// Name returns the logger name.
func (l *Logger) Name() string {
	return l.name
}

// Named returns a new Logger with the given name and otherwise identical
// configuration.
func (l *Logger) Named(name string) *Logger {
	clone := *l
	clone.name = name
	return &clone
}

// Bind returns a new Logger whose bound context is extended with the given
// fields. The receiver is not modified.
func (l *Logger) Bind(fields ...core.Field) *Logger {
	merged := make([]core.Field, len(l.context)+len(fields))
	copy(merged, l.context)
	copy(merged[len(l.context):], fields)

	clone := *l
	clone.context = merged
	return &clone
}

// Unbind returns a new Logger with the given keys removed from the bound
// context. The receiver is not modified.
func (l *Logger) Unbind(keys ...string) *Logger {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}
	kept := make([]core.Field, 0, len(l.context))
	for _, f := range l.context {
		if _, ok := drop[f.Key]; !ok {
			kept = append(kept, f)
		}
	}

	clone := *l
	clone.context = kept
	return &clone
}

// WithPreprocessors returns a new Logger with additional preprocessors.
func (l *Logger) WithPreprocessors(ps ...core.Processor) *Logger {
	merged := make([]core.Processor, len(l.pre)+len(ps))
	copy(merged, l.pre)
	copy(merged[len(l.pre):], ps)

	clone := *l
	clone.pre = merged
	return &clone
}

// Log logs a message at the given level.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	if level < l.core.MinLevel() {
		return
	}
	l.log(nil, level, msg, fields)
}

// LogContext logs a message at the given level with contextualized fields
// from ctx.
func (l *Logger) LogContext(ctx context.Context, level core.Level, msg string, fields ...core.Field) {
	if level < l.core.MinLevel() {
		return
	}
	l.log(ctx, level, msg, fields)
}

// log builds the record, runs the preprocessors and pushes. The level gate
// has already passed, so from here on the record is built unconditionally.
func (l *Logger) log(ctx context.Context, level core.Level, msg string, fields []core.Field) {
	rec := core.GetRecord()
	if l.coarseClock {
		rec.Time = core.CoarseNow()
	} else {
		rec.Time = time.Now()
	}
	rec.Level = level
	rec.LevelName = level.String()
	rec.Message = msg
	rec.LoggerName = l.name

	if len(l.context) > 0 {
		rec.Context = append(rec.Context, l.context...)
	}
	if ctx != nil {
		if scoped := FieldsFromContext(ctx); len(scoped) > 0 {
			rec.Context = append(rec.Context, scoped...)
		}
	}
	if len(fields) > 0 {
		rec.Extra = append(rec.Extra, fields...)
	}

	for _, p := range l.pre {
		out, err := runPreprocessor(p, rec)
		if err != nil {
			l.core.ReportError("preprocessor", rec, err)
			core.PutRecord(rec)
			return
		}
		if out == nil {
			core.PutRecord(rec)
			return
		}
		rec = out
	}

	l.core.Push(rec)
}

// runPreprocessor isolates preprocessor panics so caller code is never
// interrupted by a log call.
func runPreprocessor(p core.Processor, rec *core.Record) (out *core.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("preprocessor panic: %v", r)
		}
	}()
	return p(rec), nil
}

// Trace logs a trace message
func (l *Logger) Trace(msg string, fields ...core.Field) {
	if core.TraceLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.TraceLevel, msg, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.InfoLevel, msg, fields)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string, fields ...core.Field) {
	if core.WarningLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.WarningLevel, msg, fields)
}

// Warn is an alias for Warning.
func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.Warning(msg, fields...)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.ErrorLevel, msg, fields)
}

// Critical logs a critical message
func (l *Logger) Critical(msg string, fields ...core.Field) {
	if core.CriticalLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.CriticalLevel, msg, fields)
}

// TraceContext logs a trace message with contextualized fields from ctx
func (l *Logger) TraceContext(ctx context.Context, msg string, fields ...core.Field) {
	l.LogContext(ctx, core.TraceLevel, msg, fields...)
}

// DebugContext logs a debug message with contextualized fields from ctx
func (l *Logger) DebugContext(ctx context.Context, msg string, fields ...core.Field) {
	l.LogContext(ctx, core.DebugLevel, msg, fields...)
}

// InfoContext logs an info message with contextualized fields from ctx
func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...core.Field) {
	l.LogContext(ctx, core.InfoLevel, msg, fields...)
}

// WarningContext logs a warning message with contextualized fields from ctx
func (l *Logger) WarningContext(ctx context.Context, msg string, fields ...core.Field) {
	l.LogContext(ctx, core.WarningLevel, msg, fields...)
}

// ErrorContext logs an error message with contextualized fields from ctx
func (l *Logger) ErrorContext(ctx context.Context, msg string, fields ...core.Field) {
	l.LogContext(ctx, core.ErrorLevel, msg, fields...)
}

// CriticalContext logs a critical message with contextualized fields from ctx
func (l *Logger) CriticalContext(ctx context.Context, msg string, fields ...core.Field) {
	l.LogContext(ctx, core.CriticalLevel, msg, fields...)
}

// Tracef logs a formatted trace message
func (l *Logger) Tracef(format string, args ...interface{}) {
	if core.TraceLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.TraceLevel, fmt.Sprintf(format, args...), nil)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	if core.DebugLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	if core.InfoLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	if core.WarningLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.WarningLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	if core.ErrorLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Criticalf logs a formatted critical message
func (l *Logger) Criticalf(format string, args ...interface{}) {
	if core.CriticalLevel < l.core.MinLevel() {
		return
	}
	l.log(nil, core.CriticalLevel, fmt.Sprintf(format, args...), nil)
}

// Exception logs an error-level message with structured error information
// attached to the record, including the caller's stack.
func (l *Logger) Exception(msg string, err error, fields ...core.Field) {
	if core.ErrorLevel < l.core.MinLevel() {
		return
	}
	rec := core.GetRecord()
	rec.Time = time.Now()
	rec.Level = core.ErrorLevel
	rec.LevelName = core.ErrorLevel.String()
	rec.Message = msg
	rec.LoggerName = l.name
	if len(l.context) > 0 {
		rec.Context = append(rec.Context, l.context...)
	}
	if len(fields) > 0 {
		rec.Extra = append(rec.Extra, fields...)
	}
	if err != nil {
		rec.Err = &core.ErrorInfo{
			Kind:    fmt.Sprintf("%T", err),
			Message: err.Error(),
			Stack:   string(debug.Stack()),
		}
	}

	for _, p := range l.pre {
		out, perr := runPreprocessor(p, rec)
		if perr != nil {
			l.core.ReportError("preprocessor", rec, perr)
			core.PutRecord(rec)
			return
		}
		if out == nil {
			core.PutRecord(rec)
			return
		}
		rec = out
	}

	l.core.Push(rec)
}
