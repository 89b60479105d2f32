package logger

import (
	"context"
	"log/slog"

	"github.com/plainlog/plainlog/core"
)

// SlogHandler adapts a Logger as a log/slog handler, so code written
// against slog feeds the same pipeline. Attrs become extra fields; groups
// become dotted key prefixes.
type SlogHandler struct {
	logger *Logger
	attrs  []core.Field
	group  string
}

// NewSlogHandler creates a slog.Handler forwarding to the given Logger.
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{logger: l}
}

// Enabled reports whether the Logger's Core would accept the level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return s.logger.Core().Enabled(slogLevelToCore(level))
}

// Handle converts the slog.Record and pushes it through the pipeline.
func (s *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	fields := make([]core.Field, 0, len(s.attrs)+record.NumAttrs())
	fields = append(fields, s.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = append(fields, slogAttrToField(s.group, a))
		return true
	})

	s.logger.LogContext(ctx, slogLevelToCore(record.Level), record.Message, fields...)
	return nil
}

// WithAttrs returns a new handler with additional pre-bound attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(merged, s.attrs)
	for _, a := range attrs {
		merged = append(merged, slogAttrToField(s.group, a))
	}
	return &SlogHandler{logger: s.logger, attrs: merged, group: s.group}
}

// WithGroup returns a new handler with the given group name prefix.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	group := name
	if s.group != "" {
		group = s.group + "." + name
	}
	attrs := make([]core.Field, len(s.attrs))
	copy(attrs, s.attrs)
	return &SlogHandler{logger: s.logger, attrs: attrs, group: group}
}

// slogLevelToCore maps slog levels onto the pipeline's level scale.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarningLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// slogAttrToField converts a slog.Attr, prepending the group prefix.
func slogAttrToField(group string, a slog.Attr) core.Field {
	key := a.Key
	if group != "" {
		key = group + "." + a.Key
	}

	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindString:
		return core.String(key, a.Value.String())
	case slog.KindInt64:
		return core.Int64(key, a.Value.Int64())
	case slog.KindFloat64:
		return core.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return core.Bool(key, a.Value.Bool())
	case slog.KindTime:
		return core.Time(key, a.Value.Time())
	case slog.KindDuration:
		return core.Duration(key, a.Value.Duration())
	default:
		return core.Any(key, a.Value.Any())
	}
}
