package core

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureHandler records messages as they are handled. Messages are copied
// out because records may be recycled after dispatch.
type captureHandler struct {
	mu   sync.Mutex
	msgs []string
}

func (h *captureHandler) Handle(r *Record) error {
	h.mu.Lock()
	h.msgs = append(h.msgs, r.Message)
	h.mu.Unlock()
	return nil
}

func (h *captureHandler) Close() error { return nil }

func (h *captureHandler) messages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// gateHandler blocks the consumer inside Handle until released, so tests
// can fill the queue deterministically.
type gateHandler struct {
	capture captureHandler
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newGateHandler() *gateHandler {
	return &gateHandler{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (h *gateHandler) Handle(r *Record) error {
	h.once.Do(func() { close(h.started) })
	<-h.release
	return h.capture.Handle(r)
}

func (h *gateHandler) Close() error { return nil }

func pushMessage(c *Core, level Level, msg string) {
	rec := GetRecord()
	rec.Time = time.Now()
	rec.Level = level
	rec.LevelName = level.String()
	rec.Message = msg
	c.Push(rec)
}

func TestCore_FIFOOrder(t *testing.T) {
	c := NewCore()
	h := &captureHandler{}
	_, err := c.AddHandler(h)
	require.NoError(t, err)
	defer c.Close(time.Second)

	want := make([]string, 100)
	for i := range want {
		want[i] = fmt.Sprintf("message-%03d", i)
		pushMessage(c, InfoLevel, want[i])
	}
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, want, h.messages())
}

func TestCore_StopDrainsQueue(t *testing.T) {
	c := NewCore()
	h := &captureHandler{}
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		pushMessage(c, InfoLevel, fmt.Sprintf("m%d", i))
	}
	require.NoError(t, c.Stop(2*time.Second))

	assert.Len(t, h.messages(), 100)

	// A stopped core rejects further pushes.
	pushMessage(c, InfoLevel, "late")
	assert.Len(t, h.messages(), 100)
	assert.Equal(t, uint64(1), c.Stats().Rejected)
}

func TestCore_StopTimeout(t *testing.T) {
	c := NewCore(WithErrorOutput(&bytes.Buffer{}))
	h := newGateHandler()
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "stuck")
	<-h.started

	err = c.Stop(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrShutdownTimeout)

	close(h.release)
}

func TestCore_PushDropNewest(t *testing.T) {
	c := NewCore(WithQueueSize(2))
	h := newGateHandler()
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "m0")
	<-h.started // consumer is stuck in Handle, queue is empty

	pushMessage(c, InfoLevel, "m1")
	pushMessage(c, InfoLevel, "m2")
	pushMessage(c, InfoLevel, "m3") // queue full, dropped
	pushMessage(c, InfoLevel, "m4") // queue full, dropped

	close(h.release)
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"m0", "m1", "m2"}, h.capture.messages())
	assert.Equal(t, uint64(2), c.Stats().Rejected)

	c.Close(time.Second)
}

func TestCore_PushDropOldest(t *testing.T) {
	c := NewCore(WithQueueSize(2), WithPushMode(DropOldest))
	h := newGateHandler()
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "m0")
	<-h.started

	pushMessage(c, InfoLevel, "m1")
	pushMessage(c, InfoLevel, "m2")
	pushMessage(c, InfoLevel, "m3") // evicts m1
	pushMessage(c, InfoLevel, "m4") // evicts m2

	close(h.release)
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"m0", "m3", "m4"}, h.capture.messages())
	assert.Equal(t, uint64(2), c.Stats().Rejected)

	c.Close(time.Second)
}

func TestCore_PushBlockTimesOut(t *testing.T) {
	c := NewCore(WithQueueSize(1), WithPushMode(Block), WithBlockTimeout(30*time.Millisecond))
	h := newGateHandler()
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "m0")
	<-h.started

	pushMessage(c, InfoLevel, "m1") // fills the queue

	start := time.Now()
	pushMessage(c, InfoLevel, "m2") // blocks, then gives up
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	close(h.release)
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"m0", "m1"}, h.capture.messages())
	snap := c.Stats()
	assert.Equal(t, uint64(1), snap.Blocked)
	assert.Equal(t, uint64(1), snap.Rejected)

	c.Close(time.Second)
}

func TestCore_MinLevelTracksHandlers(t *testing.T) {
	c := NewCore()
	defer c.Close(time.Second)

	// No handlers: nothing is enabled.
	assert.False(t, c.Enabled(CriticalLevel))

	nameInfo, err := c.AddHandler(&captureHandler{}, WithHandlerLevel(InfoLevel))
	require.NoError(t, err)
	assert.Equal(t, InfoLevel, c.MinLevel())

	nameDebug, err := c.AddHandler(&captureHandler{}, WithHandlerLevel(DebugLevel))
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, c.MinLevel())

	require.NoError(t, c.RemoveHandler(nameDebug))
	assert.Equal(t, InfoLevel, c.MinLevel())

	require.NoError(t, c.RemoveHandler(nameInfo))
	assert.False(t, c.Enabled(CriticalLevel))
}

func TestCore_HandlerLevelGate(t *testing.T) {
	c := NewCore()
	all := &captureHandler{}
	errsOnly := &captureHandler{}
	_, err := c.AddHandler(all, WithHandlerName("all"))
	require.NoError(t, err)
	_, err = c.AddHandler(errsOnly, WithHandlerName("errors"), WithHandlerLevel(ErrorLevel))
	require.NoError(t, err)
	defer c.Close(time.Second)

	pushMessage(c, DebugLevel, "debug")
	pushMessage(c, ErrorLevel, "error")
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"debug", "error"}, all.messages())
	assert.Equal(t, []string{"error"}, errsOnly.messages())
}

func TestCore_HandlerPanicIsolated(t *testing.T) {
	var errOut bytes.Buffer
	c := NewCore(WithErrorOutput(&errOut))

	panicky := HandlerFunc(func(r *Record) error {
		if r.Message == "boom" {
			panic("exploded")
		}
		return nil
	})
	after := &captureHandler{}
	_, err := c.AddHandler(panicky, WithHandlerName("panicky"))
	require.NoError(t, err)
	_, err = c.AddHandler(after, WithHandlerName("after"))
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "boom")
	pushMessage(c, InfoLevel, "still alive")
	require.NoError(t, c.Sync(time.Second))

	// The panicking handler did not starve the second handler or kill the
	// consumer.
	assert.Equal(t, []string{"boom", "still alive"}, after.messages())
	assert.Equal(t, uint64(1), c.Stats().HandlerFailures)
	assert.Contains(t, errOut.String(), "--- logging error in handler panicky ---")
	assert.Contains(t, errOut.String(), "exploded")

	c.Close(time.Second)
}

func TestCore_HandlerErrorReported(t *testing.T) {
	var errOut bytes.Buffer
	c := NewCore(WithErrorOutput(&errOut))

	failing := HandlerFunc(func(r *Record) error { return errors.New("disk full") })
	_, err := c.AddHandler(failing, WithHandlerName("sink"))
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "hello")
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, uint64(1), c.Stats().HandlerFailures)
	assert.Contains(t, errOut.String(), "disk full")

	c.Close(time.Second)
}

func TestCore_HandlerErrorReportingSuppressed(t *testing.T) {
	var errOut bytes.Buffer
	c := NewCore(WithErrorOutput(&errOut))

	failing := HandlerFunc(func(r *Record) error { return errors.New("disk full") })
	_, err := c.AddHandler(failing, WithoutErrorReporting())
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "hello")
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, uint64(1), c.Stats().HandlerFailures)
	assert.Empty(t, errOut.String())

	c.Close(time.Second)
}

func TestCore_ProcessorDrop(t *testing.T) {
	c := NewCore()
	h := &captureHandler{}
	_, err := c.AddHandler(h)
	require.NoError(t, err)
	c.AddProcessor(func(r *Record) *Record {
		if r.Level < WarningLevel {
			return nil
		}
		return r
	})

	pushMessage(c, InfoLevel, "quiet")
	pushMessage(c, ErrorLevel, "loud")
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"loud"}, h.messages())
	assert.Equal(t, uint64(1), c.Stats().ProcessorDropped)

	c.Close(time.Second)
}

func TestCore_ProcessorMutatesRecord(t *testing.T) {
	c := NewCore()
	var got []Field
	h := HandlerFunc(func(r *Record) error {
		got = append([]Field(nil), r.Extra...)
		return nil
	})
	_, err := c.AddHandler(h)
	require.NoError(t, err)
	c.AddProcessor(func(r *Record) *Record {
		r.Extra = append(r.Extra, String("stage", "enriched"))
		return r
	})

	pushMessage(c, InfoLevel, "msg")
	require.NoError(t, c.Sync(time.Second))

	require.Len(t, got, 1)
	assert.Equal(t, "stage", got[0].Key)
	assert.Equal(t, "enriched", got[0].StringValue())

	c.Close(time.Second)
}

func TestCore_ProcessorPanicIsolated(t *testing.T) {
	var errOut bytes.Buffer
	c := NewCore(WithErrorOutput(&errOut))
	h := &captureHandler{}
	_, err := c.AddHandler(h)
	require.NoError(t, err)
	c.AddProcessor(func(r *Record) *Record {
		if r.Message == "bad" {
			panic("processor blew up")
		}
		return r
	})

	pushMessage(c, InfoLevel, "bad")
	pushMessage(c, InfoLevel, "good")
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"good"}, h.messages())
	assert.Equal(t, uint64(1), c.Stats().ProcessorFailures)
	assert.Contains(t, errOut.String(), "processor blew up")

	c.Close(time.Second)
}

func TestCore_ResetProcessors(t *testing.T) {
	c := NewCore()
	h := &captureHandler{}
	_, err := c.AddHandler(h)
	require.NoError(t, err)
	c.AddProcessor(func(r *Record) *Record { return nil })
	c.ResetProcessors()

	pushMessage(c, InfoLevel, "survives")
	require.NoError(t, c.Sync(time.Second))

	assert.Equal(t, []string{"survives"}, h.messages())

	c.Close(time.Second)
}

func TestCore_AddHandlerDuplicateName(t *testing.T) {
	c := NewCore()
	defer c.Close(time.Second)

	_, err := c.AddHandler(&captureHandler{}, WithHandlerName("sink"))
	require.NoError(t, err)
	_, err = c.AddHandler(&captureHandler{}, WithHandlerName("sink"))
	assert.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestCore_RemoveUnknownHandler(t *testing.T) {
	c := NewCore()
	defer c.Close(time.Second)

	err := c.RemoveHandler("nope")
	assert.ErrorIs(t, err, ErrUnknownHandler)
}

func TestCore_HandlersListsNames(t *testing.T) {
	c := NewCore()
	defer c.Close(time.Second)

	_, err := c.AddHandler(&captureHandler{}, WithHandlerName("first"))
	require.NoError(t, err)
	name, err := c.AddHandler(&captureHandler{})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", name}, c.Handlers())
}

func TestCore_SyncEmptyQueue(t *testing.T) {
	c := NewCore()
	defer c.Close(time.Second)
	assert.NoError(t, c.Sync(time.Second))
}

func TestCore_SyncTimeout(t *testing.T) {
	c := NewCore()
	h := newGateHandler()
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	pushMessage(c, InfoLevel, "stuck")
	<-h.started
	pushMessage(c, InfoLevel, "queued")

	assert.ErrorIs(t, c.Sync(20*time.Millisecond), ErrSyncTimeout)

	close(h.release)
	c.Close(time.Second)
}

func TestCore_StatsCounters(t *testing.T) {
	c := NewCore()
	h := &captureHandler{}
	_, err := c.AddHandler(h)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		pushMessage(c, InfoLevel, "m")
	}
	require.NoError(t, c.Sync(time.Second))

	snap := c.Stats()
	assert.Equal(t, uint64(10), snap.Enqueued)
	assert.Equal(t, uint64(10), snap.Dispatched)
	assert.Equal(t, uint64(0), snap.Rejected)

	c.Close(time.Second)
}

func TestPushMode_String(t *testing.T) {
	assert.Equal(t, "DropNewest", DropNewest.String())
	assert.Equal(t, "DropOldest", DropOldest.String())
	assert.Equal(t, "Block", Block.String())
	assert.Equal(t, "Unknown", PushMode(42).String())
}
