package handler

import (
	"bufio"
	"bytes"
	"io"
	"sync"

	"github.com/plainlog/plainlog/core"
	"github.com/plainlog/plainlog/formatter"
)

// StreamHandler writes formatted records to an io.Writer. Writes go through
// a buffered writer that is flushed after every record, so a crash loses at
// most the record being written. The mutex only guards against Handle and
// Close racing; the consumer itself never calls Handle concurrently.
type StreamHandler struct {
	mu     sync.Mutex
	w      *bufio.Writer
	out    io.Writer
	fmt    core.Formatter
	buf    bytes.Buffer
	closed bool
}

// NewStreamHandler creates a handler writing to w. A nil formatter defaults
// to the text formatter.
func NewStreamHandler(w io.Writer, f core.Formatter) *StreamHandler {
	if f == nil {
		f = formatter.NewTextFormatter(formatter.Config{})
	}
	return &StreamHandler{
		w:   bufio.NewWriterSize(w, 4096),
		out: w,
		fmt: f,
	}
}

// SetFormatter replaces the handler's formatter.
func (h *StreamHandler) SetFormatter(f core.Formatter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if f != nil {
		h.fmt = f
	}
}

// Handle formats and writes a single record.
func (h *StreamHandler) Handle(r *core.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if err := h.write(r); err != nil {
		return err
	}
	return h.w.Flush()
}

// write renders r into the handler's scratch buffer and copies it to the
// buffered writer. Callers must hold h.mu.
func (h *StreamHandler) write(r *core.Record) error {
	if bf, ok := h.fmt.(formatter.BufferFormatter); ok {
		h.buf.Reset()
		bf.FormatRecord(r, &h.buf)
		_, err := h.w.Write(h.buf.Bytes())
		return err
	}
	data, err := h.fmt.Format(r)
	if err != nil {
		return err
	}
	_, err = h.w.Write(data)
	return err
}

// Close flushes buffered output. The underlying writer is not closed; the
// caller owns it.
func (h *StreamHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.w.Flush()
}
