package serialstream

import (
	"io"
	"time"
)

// readPollInterval is the polling granularity of the synchronous Read
// accessor while it waits for enough bytes to accumulate.
const readPollInterval = time.Millisecond

// Reader turns a serial port's native read capability into a single stream
// of Events. The backend is chosen once, at construction: a port exposing
// the blocking Driver capability gets a dedicated worker goroutine, a port
// exposing the PushSource capability is bridged without one.
//
// The stream activates on the first call to Events or Read, can be paused
// and resumed, and is shut down for good by Close. Errors travel in-band as
// Events with Err set; the stream channel itself only closes on Close.
type Reader struct {
	port    Port
	timeout time.Duration
	events  chan Event
	backend backend
	lc      *lifecycle
	pending pendingBuffer
	owned   io.Closer
}

// NewReader binds a reader to port. A timeout of zero means wait
// indefinitely; a positive timeout bounds each blocking read (Driver ports)
// or arms the inactivity window (PushSource ports). The port handle remains
// owned by the caller and is not closed by Reader.Close.
func NewReader(port Port, timeout time.Duration) (*Reader, error) {
	r := &Reader{
		port:    port,
		timeout: timeout,
		events:  make(chan Event, 64),
	}
	switch p := port.(type) {
	case Driver:
		r.backend = newWorkerBackend(p, timeout)
	case PushSource:
		r.backend = newPushBackend(p, timeout)
	default:
		return nil, ErrUnsupportedPort
	}
	r.lc = newLifecycle(
		func() { r.backend.activate(r.emit) },
		func() {
			r.backend.deactivate()
			r.pending.reset()
		},
		func() {
			close(r.events)
			if r.owned != nil {
				r.owned.Close()
			}
		},
	)
	return r, nil
}

// Port returns the bound port handle.
func (r *Reader) Port() Port { return r.port }

// State reports the current lifecycle state.
func (r *Reader) State() State { return r.lc.State() }

// Events activates the stream if it is idle and returns the output channel.
// Chunks arrive in production order; errors arrive in-band with Err set.
// After Close the returned channel is closed.
func (r *Reader) Events() <-chan Event {
	r.lc.Activate()
	return r.events
}

// Pause tears down the backend's delivery resources. For a Driver port the
// in-flight native call is not interrupted; the worker is cut off from the
// stream and exits on its own. Nothing produced before a Pause is delivered
// after the matching Resume.
func (r *Reader) Pause() {
	r.lc.Deactivate()
}

// Resume reactivates a paused reader with fresh backend resources. Returns
// ErrClosed after Close.
func (r *Reader) Resume() error {
	return r.lc.Activate()
}

// Close releases the reader. Idempotent and safe to call from any state; a
// second call is a no-op. The stream channel is closed, not the port,
// unless the reader was built by a convenience constructor that opened the
// port itself.
func (r *Reader) Close() error {
	r.lc.Close()
	return nil
}

// Read returns exactly n bytes once they are available. If the pending
// buffer already holds n bytes they are returned immediately and the rest
// retained. Otherwise, with a positive timeout, Read polls every
// millisecond until n bytes accumulate or the deadline passes; hitting the
// deadline returns an empty, non-nil slice and no error. With no timeout
// and insufficient data it returns empty immediately.
//
// Read consumes from the same stream as Events; using both concurrently is
// the caller's responsibility to avoid.
func (r *Reader) Read(n int, timeout time.Duration) ([]byte, error) {
	if err := r.lc.Activate(); err != nil {
		return nil, err
	}
	if err := r.drain(); err != nil {
		return nil, err
	}
	if out := r.pending.take(n); out != nil {
		return out, nil
	}
	if timeout <= 0 {
		return []byte{}, nil
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(readPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if err := r.drain(); err != nil {
			return nil, err
		}
		if out := r.pending.take(n); out != nil {
			return out, nil
		}
		if !time.Now().Before(deadline) {
			return []byte{}, nil
		}
	}
	return []byte{}, nil
}

// drain moves already-queued stream events into the pending buffer. A
// queued error event is surfaced as the return value.
func (r *Reader) drain() error {
	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				return ErrClosed
			}
			if ev.Err != nil {
				return ev.Err
			}
			r.pending.push(ev.Data)
		default:
			return nil
		}
	}
}

func (r *Reader) emit(ev Event, done <-chan struct{}) bool {
	select {
	case r.events <- ev:
		return true
	case <-done:
		return false
	}
}
