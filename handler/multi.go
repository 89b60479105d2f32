package handler

import (
	"go.uber.org/multierr"

	"github.com/plainlog/plainlog/core"
)

// MultiHandler fans a record out to several handlers in order. Errors are
// collected rather than short-circuiting, so one failing sink does not
// starve the others.
type MultiHandler struct {
	handlers []core.Handler
}

// NewMultiHandler creates a handler that dispatches to all given handlers.
func NewMultiHandler(handlers ...core.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handle dispatches the record to every handler.
func (h *MultiHandler) Handle(r *core.Record) error {
	var err error
	for _, hh := range h.handlers {
		err = multierr.Append(err, hh.Handle(r))
	}
	return err
}

// RetainsRecords reports true when any wrapped handler retains records.
func (h *MultiHandler) RetainsRecords() bool {
	for _, hh := range h.handlers {
		if rr, ok := hh.(core.RecordRetainer); ok && rr.RetainsRecords() {
			return true
		}
	}
	return false
}

// Close closes every handler, collecting errors.
func (h *MultiHandler) Close() error {
	var err error
	for _, hh := range h.handlers {
		err = multierr.Append(err, hh.Close())
	}
	return err
}
