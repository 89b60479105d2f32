package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
)

// PushMode defines how Push behaves when the queue is full.
type PushMode int

const (
	// DropNewest drops the record being pushed when the queue is full
	DropNewest PushMode = iota
	// DropOldest drops the oldest queued record to make room
	DropOldest
	// Block waits for space until the block timeout elapses
	Block
)

// String returns the string representation of the mode
func (m PushMode) String() string {
	switch m {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

var (
	// ErrShutdownTimeout is returned by Stop when the queue did not drain in time.
	ErrShutdownTimeout = errors.New("shutdown timeout: queued records discarded")
	// ErrSyncTimeout is returned by Sync when the barrier was not reached in time.
	ErrSyncTimeout = errors.New("sync timeout")
	// ErrUnknownHandler is returned when removing a handler that is not registered.
	ErrUnknownHandler = errors.New("unknown handler")
	// ErrDuplicateHandler is returned when adding a handler under a taken name.
	ErrDuplicateHandler = errors.New("duplicate handler name")
)

// HandlerRecord is a registered handler with its dispatch settings.
type HandlerRecord struct {
	Name    string
	Level   Level
	handler Handler

	formatter    Formatter
	reportErrors bool
	retains      bool
}

// HandlerOption configures a handler registration.
type HandlerOption func(*HandlerRecord)

// WithHandlerName sets the registration name used by RemoveHandler.
func WithHandlerName(name string) HandlerOption {
	return func(hr *HandlerRecord) { hr.Name = name }
}

// WithHandlerLevel sets the minimum level the handler accepts.
func WithHandlerLevel(level Level) HandlerOption {
	return func(hr *HandlerRecord) { hr.Level = level }
}

// WithHandlerFormatter sets the formatter applied to the handler at
// registration. It takes effect only for handlers implementing
// FormatterSetter.
func WithHandlerFormatter(f Formatter) HandlerOption {
	return func(hr *HandlerRecord) { hr.formatter = f }
}

// WithoutErrorReporting suppresses fallback diagnostics for this handler's
// failures.
func WithoutErrorReporting() HandlerOption {
	return func(hr *HandlerRecord) { hr.reportErrors = false }
}

// envelope is the unit carried by the hand-off queue. A nil rec with a
// non-nil barrier marks a Sync barrier.
type envelope struct {
	rec     *Record
	barrier chan struct{}
}

// Core owns the hand-off queue, the single consumer goroutine, the handler
// registry and the processor pipeline. Loggers sharing a Core are peers;
// the Core guarantees that processors and handlers are never invoked
// concurrently with each other.
type Core struct {
	queue        chan envelope
	pushMode     PushMode
	blockTimeout time.Duration

	mu         sync.Mutex // guards registry and processor mutations
	handlerSeq int
	handlers   atomic.Pointer[[]HandlerRecord]
	procs      atomic.Pointer[[]Processor]
	minLevel   atomic.Int32
	recycle    atomic.Bool // true when no registered handler retains records

	started  atomic.Bool
	stopping atomic.Bool
	stopCh   chan struct{}
	done     chan struct{}

	errMu  sync.Mutex
	errOut io.Writer

	stats *Stats
}

// Option configures a Core.
type Option func(*Core)

// WithQueueSize sets the queue capacity. Values below 1 are clamped to 1.
func WithQueueSize(n int) Option {
	return func(c *Core) {
		if n < 1 {
			n = 1
		}
		c.queue = make(chan envelope, n)
	}
}

// WithPushMode sets the queue-full policy for Push.
func WithPushMode(mode PushMode) Option {
	return func(c *Core) { c.pushMode = mode }
}

// WithBlockTimeout sets how long Push waits in Block mode (default 100ms).
func WithBlockTimeout(d time.Duration) Option {
	return func(c *Core) { c.blockTimeout = d }
}

// WithErrorOutput sets the fallback writer for pipeline diagnostics
// (default os.Stderr). Pipeline failures are reported there and never
// propagate to callers.
func WithErrorOutput(w io.Writer) Option {
	return func(c *Core) { c.errOut = w }
}

const defaultQueueSize = 8192

// NewCore creates a Core. The consumer goroutine starts lazily on the
// first Push or explicitly via Start.
func NewCore(opts ...Option) *Core {
	c := &Core{
		pushMode:     DropNewest,
		blockTimeout: 100 * time.Millisecond,
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		errOut:       os.Stderr,
		stats:        &Stats{},
	}
	c.minLevel.Store(int32(levelInfinite))
	empty := make([]HandlerRecord, 0)
	c.handlers.Store(&empty)
	noProcs := make([]Processor, 0)
	c.procs.Store(&noProcs)
	c.recycle.Store(true)

	for _, opt := range opts {
		opt(c)
	}
	if c.queue == nil {
		c.queue = make(chan envelope, defaultQueueSize)
	}

	return c
}

// Start spawns the consumer goroutine. Idempotent; calling it more than
// once has no additional effect.
func (c *Core) Start() {
	if c.stopping.Load() {
		return
	}
	if c.started.CompareAndSwap(false, true) {
		go c.worker()
	}
}

// MinLevel returns the cached minimum level over all registered handlers.
// With no handlers it is effectively infinite, so producers short-circuit
// every log call.
func (c *Core) MinLevel() Level {
	return Level(c.minLevel.Load())
}

// Enabled reports whether a record at the given level would pass the
// producer fast path.
func (c *Core) Enabled(level Level) bool {
	return level >= c.MinLevel()
}

// Stats returns a snapshot of the pipeline counters.
func (c *Core) Stats() Snapshot {
	return c.stats.GetSnapshot()
}

// Push hands a record over to the consumer. Ownership of the record
// transfers to the Core; the caller must not touch it afterwards. Push
// never returns an error: rejections are counted and the record is
// recycled.
func (c *Core) Push(rec *Record) {
	if rec == nil {
		return
	}
	if c.stopping.Load() {
		c.stats.incrementRejected()
		PutRecord(rec)
		return
	}
	c.Start()

	env := envelope{rec: rec}
	switch c.pushMode {
	case Block:
		select {
		case c.queue <- env:
			c.stats.incrementEnqueued()
			return
		default:
		}
		c.stats.incrementBlocked()
		timer := time.NewTimer(c.blockTimeout)
		select {
		case c.queue <- env:
			timer.Stop()
			c.stats.incrementEnqueued()
		case <-timer.C:
			c.stats.incrementRejected()
			PutRecord(rec)
		}

	case DropOldest:
		select {
		case c.queue <- env:
			c.stats.incrementEnqueued()
			return
		default:
		}
		// Queue full: evict the oldest queued record, then retry once.
		select {
		case old := <-c.queue:
			if old.barrier != nil {
				close(old.barrier)
			} else {
				c.stats.incrementRejected()
				PutRecord(old.rec)
			}
		default:
		}
		select {
		case c.queue <- env:
			c.stats.incrementEnqueued()
		default:
			c.stats.incrementRejected()
			PutRecord(rec)
		}

	case DropNewest:
		fallthrough
	default:
		select {
		case c.queue <- env:
			c.stats.incrementEnqueued()
		default:
			c.stats.incrementRejected()
			PutRecord(rec)
		}
	}
}

// AddHandler registers a handler and returns its registration name. The
// default minimum level is TraceLevel; the default name is generated.
// Safe to call concurrently with running producers and the consumer.
func (c *Core) AddHandler(h Handler, opts ...HandlerOption) (string, error) {
	hr := HandlerRecord{
		Level:        TraceLevel,
		handler:      h,
		reportErrors: true,
	}
	for _, opt := range opts {
		opt(&hr)
	}
	if hr.formatter != nil {
		if fs, ok := h.(FormatterSetter); ok {
			fs.SetFormatter(hr.formatter)
		}
	}
	if rr, ok := h.(RecordRetainer); ok {
		hr.retains = rr.RetainsRecords()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if hr.Name == "" {
		c.handlerSeq++
		hr.Name = fmt.Sprintf("handler-%d", c.handlerSeq)
	}
	current := *c.handlers.Load()
	for _, existing := range current {
		if existing.Name == hr.Name {
			return "", fmt.Errorf("%w: %q", ErrDuplicateHandler, hr.Name)
		}
	}

	next := make([]HandlerRecord, len(current), len(current)+1)
	copy(next, current)
	next = append(next, hr)
	c.handlers.Store(&next)
	c.recomputeLocked(next)

	return hr.Name, nil
}

// RemoveHandler unregisters the named handler and closes it. A close error
// is reported on the fallback writer, not returned.
func (c *Core) RemoveHandler(name string) error {
	c.mu.Lock()
	current := *c.handlers.Load()
	idx := -1
	for i, hr := range current {
		if hr.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	removed := current[idx]
	next := make([]HandlerRecord, 0, len(current)-1)
	next = append(next, current[:idx]...)
	next = append(next, current[idx+1:]...)
	c.handlers.Store(&next)
	c.recomputeLocked(next)
	c.mu.Unlock()

	if err := removed.handler.Close(); err != nil && removed.reportErrors {
		c.reportf("error closing handler %q: %v", removed.Name, err)
	}
	return nil
}

// RemoveAllHandlers unregisters and closes every handler. Close errors are
// aggregated.
func (c *Core) RemoveAllHandlers() error {
	c.mu.Lock()
	current := *c.handlers.Load()
	next := make([]HandlerRecord, 0)
	c.handlers.Store(&next)
	c.recomputeLocked(next)
	c.mu.Unlock()

	var err error
	for _, hr := range current {
		err = multierr.Append(err, hr.handler.Close())
	}
	return err
}

// Handlers returns the names of the registered handlers in registration
// order.
func (c *Core) Handlers() []string {
	current := *c.handlers.Load()
	names := make([]string, len(current))
	for i, hr := range current {
		names[i] = hr.Name
	}
	return names
}

// AddProcessor appends a processor to the consumer-side pipeline.
func (c *Core) AddProcessor(p Processor) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	current := *c.procs.Load()
	next := make([]Processor, len(current), len(current)+1)
	copy(next, current)
	next = append(next, p)
	c.procs.Store(&next)
}

// ResetProcessors removes all consumer-side processors.
func (c *Core) ResetProcessors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]Processor, 0)
	c.procs.Store(&next)
}

// recomputeLocked refreshes the cached minimum level and the recycle flag.
// Callers hold c.mu.
func (c *Core) recomputeLocked(handlers []HandlerRecord) {
	minLevel := levelInfinite
	recycle := true
	for _, hr := range handlers {
		if hr.Level < minLevel {
			minLevel = hr.Level
		}
		if hr.retains {
			recycle = false
		}
	}
	c.minLevel.Store(int32(minLevel))
	c.recycle.Store(recycle)
}

// Sync pushes a barrier through the queue and waits until the consumer
// reaches it, guaranteeing that everything enqueued before the call has
// been dispatched or dropped.
func (c *Core) Sync(timeout time.Duration) error {
	c.Start()
	barrier := make(chan struct{})

	var timeoutC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case c.queue <- envelope{barrier: barrier}:
	case <-timeoutC:
		return ErrSyncTimeout
	}
	select {
	case <-barrier:
		return nil
	case <-timeoutC:
		return ErrSyncTimeout
	}
}

// Stop signals the consumer to drain the queue and waits for it to exit.
// With a positive timeout, Stop returns ErrShutdownTimeout once it
// elapses; records still queued at that point are abandoned and reported
// once as a diagnostic. A non-positive timeout waits indefinitely.
// Records pushed after Stop are dropped. A stopped Core cannot be
// restarted.
func (c *Core) Stop(timeout time.Duration) error {
	if c.stopping.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
	if !c.started.Load() {
		return nil
	}
	if timeout <= 0 {
		<-c.done
		return nil
	}
	select {
	case <-c.done:
		return nil
	case <-time.After(timeout):
		n := uint64(len(c.queue))
		c.stats.addDiscarded(n)
		c.reportf("shutdown timeout after %s: %d queued records discarded", timeout, n)
		return ErrShutdownTimeout
	}
}

// Close stops the Core and closes all handlers.
func (c *Core) Close(timeout time.Duration) error {
	err := c.Stop(timeout)
	return multierr.Append(err, c.RemoveAllHandlers())
}

// worker is the single consumer. It idles on the queue, and on stop drains
// whatever is left before exiting.
func (c *Core) worker() {
	defer close(c.done)

	for {
		select {
		case env := <-c.queue:
			c.consume(env)
		case <-c.stopCh:
			for {
				select {
				case env := <-c.queue:
					c.consume(env)
				default:
					return
				}
			}
		}
	}
}

// consume runs one envelope through the processor pipeline and the handler
// fan-out. All failures are isolated here; the loop never dies.
func (c *Core) consume(env envelope) {
	if env.barrier != nil {
		close(env.barrier)
		return
	}
	rec := env.rec

	for _, p := range *c.procs.Load() {
		out, err := runProcessor(p, rec)
		if err != nil {
			c.stats.incrementProcessorFailures()
			c.ReportError("processor", rec, err)
			PutRecord(rec)
			return
		}
		if out == nil {
			c.stats.incrementProcessorDropped()
			PutRecord(rec)
			return
		}
		rec = out
	}

	for _, hr := range *c.handlers.Load() {
		if rec.Level < hr.Level {
			continue
		}
		if err := invokeHandler(hr.handler, rec); err != nil {
			c.stats.incrementHandlerFailures()
			if hr.reportErrors {
				c.ReportError("handler "+hr.Name, rec, err)
			}
		}
	}
	c.stats.incrementDispatched()

	if c.recycle.Load() {
		PutRecord(rec)
	}
}

// runProcessor isolates processor panics.
func runProcessor(p Processor, rec *Record) (out *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("processor panic: %v", r)
		}
	}()
	return p(rec), nil
}

// invokeHandler isolates handler panics.
func invokeHandler(h Handler, rec *Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(rec)
}

// ReportError writes a pipeline failure to the fallback writer. It is the
// sole escape hatch for errors that must not reach caller code.
func (c *Core) ReportError(stage string, rec *Record, err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	fmt.Fprintf(c.errOut, "--- logging error in %s ---\n", stage)
	if rec != nil {
		fmt.Fprintf(c.errOut, "record was: %s %s %q\n", rec.LevelName, rec.LoggerName, rec.Message)
	}
	fmt.Fprintf(c.errOut, "%v\n--- end of logging error ---\n", err)
}

// reportf writes a one-line diagnostic to the fallback writer.
func (c *Core) reportf(format string, args ...interface{}) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	fmt.Fprintf(c.errOut, "plainlog: "+format+"\n", args...)
}
