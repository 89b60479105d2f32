package logger

import (
	"context"

	"github.com/plainlog/plainlog/core"
)

type contextKey struct{}

// Contextualize returns a context carrying additional record fields. Every
// ...Context log call made with the returned context (or one derived from
// it) includes the fields in the record's bound context. Leaving the scope
// simply means no longer passing the derived context, so the prior context
// is restored on every exit path, including panics and early returns.
// Nested calls accumulate fields in order.
func Contextualize(ctx context.Context, fields ...core.Field) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	existing := FieldsFromContext(ctx)
	merged := make([]core.Field, len(existing)+len(fields))
	copy(merged, existing)
	copy(merged[len(existing):], fields)
	return context.WithValue(ctx, contextKey{}, merged)
}

// FieldsFromContext returns the fields attached by Contextualize, or nil.
// Callers must not modify the returned slice.
func FieldsFromContext(ctx context.Context) []core.Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(contextKey{}).([]core.Field)
	return fields
}
