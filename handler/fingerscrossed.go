package handler

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/plainlog/plainlog/core"
)

// FingersCrossedHandler buffers records in a bounded ring and stays silent
// until a record at or above the action level arrives. It then flushes the
// buffer oldest-first to the wrapped handler, forwards the triggering
// record, and keeps passing records through until Reset is called. With
// AutoReset the handler re-arms after every flush instead.
type FingersCrossedHandler struct {
	mu        sync.Mutex
	inner     core.Handler
	level     core.Level
	buf       []*core.Record
	start     int
	count     int
	triggered bool
	autoReset bool
}

// FingersCrossedConfig configures a fingers-crossed handler.
type FingersCrossedConfig struct {
	// Handler receives the flushed records. Required.
	Handler core.Handler

	// ActionLevel is the level that triggers a flush (default: ErrorLevel).
	ActionLevel core.Level

	// BufferSize bounds the ring; the oldest record is evicted when a new
	// one arrives at capacity (default: 1).
	BufferSize int

	// AutoReset re-arms the handler after each flush instead of passing
	// every later record straight through.
	AutoReset bool
}

// NewFingersCrossedHandler wraps a handler with fingers-crossed buffering.
func NewFingersCrossedHandler(cfg FingersCrossedConfig) *FingersCrossedHandler {
	if cfg.ActionLevel == 0 {
		cfg.ActionLevel = core.ErrorLevel
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	return &FingersCrossedHandler{
		inner:     cfg.Handler,
		level:     cfg.ActionLevel,
		buf:       make([]*core.Record, cfg.BufferSize),
		autoReset: cfg.AutoReset,
	}
}

// RetainsRecords reports that buffered records outlive Handle.
func (h *FingersCrossedHandler) RetainsRecords() bool { return true }

// Handle buffers or forwards a record depending on the trigger state.
func (h *FingersCrossedHandler) Handle(r *core.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.triggered {
		return h.inner.Handle(r)
	}

	if r.Level >= h.level {
		err := h.rollover()
		return multierr.Append(err, h.inner.Handle(r))
	}
	h.push(r)
	return nil
}

// push appends to the ring, evicting the oldest record at capacity.
// Callers must hold h.mu.
func (h *FingersCrossedHandler) push(r *core.Record) {
	if h.count == len(h.buf) {
		h.buf[h.start] = r
		h.start = (h.start + 1) % len(h.buf)
		return
	}
	h.buf[(h.start+h.count)%len(h.buf)] = r
	h.count++
}

// rollover flushes the buffer oldest-first and updates the trigger state.
// Callers must hold h.mu.
func (h *FingersCrossedHandler) rollover() error {
	var err error
	for i := 0; i < h.count; i++ {
		idx := (h.start + i) % len(h.buf)
		err = multierr.Append(err, h.inner.Handle(h.buf[idx]))
		h.buf[idx] = nil
	}
	h.start = 0
	h.count = 0
	h.triggered = !h.autoReset
	return err
}

// Flush forces a rollover regardless of level, without changing the
// trigger state afterwards.
func (h *FingersCrossedHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	triggered := h.triggered
	err := h.rollover()
	h.triggered = triggered
	return err
}

// Reset discards any buffered records and re-arms the handler.
func (h *FingersCrossedHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.buf {
		h.buf[i] = nil
	}
	h.start = 0
	h.count = 0
	h.triggered = false
}

// Close discards any buffered records and closes the wrapped handler.
func (h *FingersCrossedHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.buf {
		h.buf[i] = nil
	}
	h.start = 0
	h.count = 0
	return h.inner.Close()
}
