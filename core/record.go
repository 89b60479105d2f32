package core

import (
	"sync"
	"time"
)

// Record is a structured log event flowing through the pipeline. It is
// built in the producer's goroutine and handed off to the Core's consumer
// with exclusive ownership: after Push, only the consumer touches it.
// Handlers must treat a dispatched record as read-only.
type Record struct {
	Time       time.Time
	Level      Level
	LevelName  string
	Message    string
	LoggerName string
	// Context holds the logger's bound fields plus contextualized fields,
	// in bind order.
	Context []Field
	// Extra holds call-site fields and fields added by processors.
	Extra []Field
	// Err carries structured error information, if any.
	Err *ErrorInfo
}

// ErrorInfo is the structured error payload of a record.
type ErrorInfo struct {
	Kind    string
	Message string
	Stack   string
}

// recordPool reduces allocations on the hot path. Records are recycled by
// the consumer only when no registered handler retains them.
var recordPool = sync.Pool{
	New: func() interface{} {
		return &Record{
			Context: make([]Field, 0, 8),
			Extra:   make([]Field, 0, 8),
		}
	},
}

// GetRecord retrieves a cleared Record from the pool.
func GetRecord() *Record {
	r := recordPool.Get().(*Record)
	r.Context = r.Context[:0]
	r.Extra = r.Extra[:0]
	r.Err = nil
	return r
}

// PutRecord returns a Record to the pool.
func PutRecord(r *Record) {
	if r == nil {
		return
	}
	r.Message = ""
	r.LoggerName = ""
	r.LevelName = ""
	r.Context = r.Context[:0]
	r.Extra = r.Extra[:0]
	r.Err = nil
	recordPool.Put(r)
}
