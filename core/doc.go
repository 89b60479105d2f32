// Package core contains the shared building blocks of the logging
// pipeline: the Record and Field types, the Level scale, the Handler,
// Formatter and Processor contracts, and the Core itself: the hand-off
// queue, the single background consumer, the handler registry and the
// cached minimum level.
//
// Producers (Loggers) build records in their own goroutine and push them
// onto the Core's queue; the consumer goroutine runs the processor
// pipeline and fans each surviving record out to every handler whose
// minimum level it reaches. No failure inside the pipeline ever
// propagates to the caller: preprocessor, processor and handler errors
// are reported on a fallback writer and the pipeline continues.
package core
