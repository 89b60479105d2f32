package benchmark

import "github.com/plainlog/plainlog/core"

// noopHandler accepts and discards records without formatting them,
// isolating the pipeline cost from the rendering cost in benchmarks.
type noopHandler struct{}

func (noopHandler) Handle(*core.Record) error { return nil }

func (noopHandler) Close() error { return nil }
