// Package processor provides reusable record processors: call-site and
// process annotation, name and level based filtering, and field surgery.
//
// Every constructor returns a core.Processor; register the result either
// on a logger (runs in the producer's goroutine) or on the core (runs in
// the consumer). Returning nil from a processor drops the record.
package processor
