package processor

import (
	"time"

	"github.com/plainlog/plainlog/core"
)

// Elapsed returns a processor that annotates records with the duration
// since the processor was created, typically process start.
func Elapsed() core.Processor {
	start := time.Now()

	return func(r *core.Record) *core.Record {
		r.Extra = append(r.Extra, core.Duration("elapsed", r.Time.Sub(start)))
		return r
	}
}

// ContextToExtra returns a processor that folds the record's bound context
// fields into Extra, leaving Context empty. Useful in front of formatters
// that only render Extra.
func ContextToExtra() core.Processor {
	return func(r *core.Record) *core.Record {
		if len(r.Context) == 0 {
			return r
		}
		r.Extra = append(r.Extra, r.Context...)
		r.Context = r.Context[:0]
		return r
	}
}

// RemoveFields returns a processor that strips the named keys from both
// Context and Extra.
func RemoveFields(keys ...string) core.Processor {
	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	return func(r *core.Record) *core.Record {
		r.Context = removeKeys(r.Context, drop)
		r.Extra = removeKeys(r.Extra, drop)
		return r
	}
}

func removeKeys(fields []core.Field, drop map[string]struct{}) []core.Field {
	out := fields[:0]
	for _, f := range fields {
		if _, ok := drop[f.Key]; !ok {
			out = append(out, f)
		}
	}
	return out
}
