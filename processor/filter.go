package processor

import (
	"strings"

	"github.com/plainlog/plainlog/core"
)

// AllowByName returns a processor that keeps only records whose logger
// name is the given prefix or lives under it in dotted notation.
func AllowByName(prefix string) core.Processor {
	return func(r *core.Record) *core.Record {
		if underPrefix(r.LoggerName, prefix) {
			return r
		}
		return nil
	}
}

// DenyByName returns a processor that drops records from the given logger
// subtree.
func DenyByName(prefix string) core.Processor {
	return func(r *core.Record) *core.Record {
		if underPrefix(r.LoggerName, prefix) {
			return nil
		}
		return r
	}
}

func underPrefix(name, prefix string) bool {
	if name == prefix {
		return true
	}
	return strings.HasPrefix(name, prefix+".")
}

// LevelByName returns a processor enforcing per-module minimum levels.
// The record's logger name is walked from most to least specific
// ("a.b.c", "a.b", "a"); the first entry found decides: the record is
// dropped when its level is below the configured one. Names without an
// entry pass through.
func LevelByName(levels map[string]core.Level) core.Processor {
	return func(r *core.Record) *core.Record {
		name := r.LoggerName
		for name != "" {
			if min, ok := levels[name]; ok {
				if r.Level < min {
					return nil
				}
				return r
			}
			idx := strings.LastIndexByte(name, '.')
			if idx < 0 {
				break
			}
			name = name[:idx]
		}
		return r
	}
}
