package core

// Handler is a terminal sink for a fully processed record. Implementations
// are never invoked concurrently by a single Core: the consumer goroutine
// serializes all dispatch, so handlers need no internal locking for that
// path.
type Handler interface {
	// Handle consumes a record. The record must be treated as read-only.
	Handle(r *Record) error

	// Close releases handler resources.
	Close() error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(r *Record) error

// Handle calls f(r).
func (f HandlerFunc) Handle(r *Record) error { return f(r) }

// Close is a no-op for function handlers.
func (f HandlerFunc) Close() error { return nil }

// RecordRetainer is an optional interface for handlers that keep references
// to records after Handle returns (for example buffering handlers). The
// Core recycles records through the pool only when every registered handler
// does not retain them.
type RecordRetainer interface {
	RetainsRecords() bool
}

// Formatter renders a record into bytes. Concrete formatters live in the
// formatter package; the contract is defined here so that handler
// registration can carry an optional formatter.
type Formatter interface {
	Format(r *Record) ([]byte, error)
}

// FormatterSetter is an optional interface for handlers that render through
// a replaceable formatter. AddHandler's formatter option is applied through
// it; handlers without the capability ignore the option.
type FormatterSetter interface {
	SetFormatter(f Formatter)
}

// Processor transforms a record in place or replaces it. Returning nil
// drops the record. The same contract serves preprocessors (run in the
// producer's goroutine before enqueue) and processors (run in the
// consumer). A panicking processor is isolated: the failure is reported to
// the Core's fallback writer and the record is dropped.
type Processor func(r *Record) *Record
