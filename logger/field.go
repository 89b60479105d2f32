package logger

import (
	"time"

	"github.com/plainlog/plainlog/core"
)

// Field re-exports core.Field for convenience
type Field = core.Field

// String creates a string field
func String(key, value string) Field { return core.String(key, value) }

// Int creates an int field
func Int(key string, value int) Field { return core.Int(key, value) }

// Int64 creates an int64 field
func Int64(key string, value int64) Field { return core.Int64(key, value) }

// Float64 creates a float64 field
func Float64(key string, value float64) Field { return core.Float64(key, value) }

// Bool creates a bool field
func Bool(key string, value bool) Field { return core.Bool(key, value) }

// Time creates a time field
func Time(key string, value time.Time) Field { return core.Time(key, value) }

// Duration creates a duration field
func Duration(key string, value time.Duration) Field { return core.Duration(key, value) }

// Err creates an error field
func Err(err error) Field { return core.Err(err) }

// Any creates a field holding an arbitrary value
func Any(key string, value interface{}) Field { return core.Any(key, value) }
