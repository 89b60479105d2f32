package core

import "sync/atomic"

// Stats tracks pipeline counters. All counters are atomic and safe to read
// while the pipeline runs.
type Stats struct {
	enqueued          atomic.Uint64
	rejected          atomic.Uint64
	blocked           atomic.Uint64
	processorDropped  atomic.Uint64
	processorFailures atomic.Uint64
	handlerFailures   atomic.Uint64
	dispatched        atomic.Uint64
	discarded         atomic.Uint64
}

// Snapshot is a point-in-time copy of the pipeline counters.
type Snapshot struct {
	// Enqueued counts records accepted onto the queue.
	Enqueued uint64
	// Rejected counts producer-side drops due to a full queue.
	Rejected uint64
	// Blocked counts pushes that had to wait in Block mode.
	Blocked uint64
	// ProcessorDropped counts records dropped by a processor decision.
	ProcessorDropped uint64
	// ProcessorFailures counts records dropped because a processor panicked.
	ProcessorFailures uint64
	// HandlerFailures counts individual handler errors and panics.
	HandlerFailures uint64
	// Dispatched counts records that completed handler fan-out.
	Dispatched uint64
	// Discarded counts queued records thrown away by a shutdown timeout.
	Discarded uint64
}

func (s *Stats) incrementEnqueued()          { s.enqueued.Add(1) }
func (s *Stats) incrementRejected()          { s.rejected.Add(1) }
func (s *Stats) incrementBlocked()           { s.blocked.Add(1) }
func (s *Stats) incrementProcessorDropped()  { s.processorDropped.Add(1) }
func (s *Stats) incrementProcessorFailures() { s.processorFailures.Add(1) }
func (s *Stats) incrementHandlerFailures()   { s.handlerFailures.Add(1) }
func (s *Stats) incrementDispatched()        { s.dispatched.Add(1) }
func (s *Stats) addDiscarded(n uint64)       { s.discarded.Add(n) }

// GetSnapshot returns a snapshot of the current counters.
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		Enqueued:          s.enqueued.Load(),
		Rejected:          s.rejected.Load(),
		Blocked:           s.blocked.Load(),
		ProcessorDropped:  s.processorDropped.Load(),
		ProcessorFailures: s.processorFailures.Load(),
		HandlerFailures:   s.handlerFailures.Load(),
		Dispatched:        s.dispatched.Load(),
		Discarded:         s.discarded.Load(),
	}
}
