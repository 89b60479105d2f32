// Package logger provides the producer-side handle of the pipeline.
//
// A Logger is immutable and cheap to copy: Bind and Unbind return new
// handles sharing the same Core. The per-level methods gate on the Core's
// cached minimum level before allocating anything, build a Record, run the
// logger's preprocessors in the caller's goroutine and push the record
// onto the Core's queue. Contextualize attaches scoped fields through a
// context.Context. A log call never blocks on I/O and never propagates a
// pipeline failure.
package logger
