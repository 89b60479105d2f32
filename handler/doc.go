// Package handler provides the sinks records are dispatched to: plain
// stream and colored console writers, a rotating file writer and the
// stateful fingers-crossed buffer, plus a fan-out combinator.
//
// Handlers are invoked sequentially by a single Core consumer, so the
// internal locking only guards against management calls (SetFormatter,
// Close) racing with dispatch.
package handler
