package serialstream

import (
	"sync"
	"time"
)

// maxChunkSize bounds a single blocking read.
const maxChunkSize = 4096

// waitSlice is the readiness-poll granularity of the worker loop. The
// native wait is re-armed every slice so deactivation is noticed promptly
// even when no data arrives.
const waitSlice = 100 * time.Millisecond

// backend is the strategy a Reader activates and deactivates. emit delivers
// one event toward the output stream, giving up (and returning false) once
// done closes, so a backend blocked on a slow consumer can always be torn
// down.
type backend interface {
	activate(emit func(ev Event, done <-chan struct{}) bool)
	deactivate()
}

// workerBackend adapts a blocking Driver by running a dedicated goroutine:
// wait for readability, perform one bounded read, forward the result over a
// per-generation channel. A forwarder goroutine moves results from that
// channel to the stream; on deactivation the forwarder stops and the
// channel is abandoned wholesale, so a read that was in flight when the
// generation ended can never deliver into a later generation.
type workerBackend struct {
	drv     Driver
	timeout time.Duration

	mu   sync.Mutex
	done chan struct{} // nil when inactive
	fwd  sync.WaitGroup
}

func newWorkerBackend(drv Driver, timeout time.Duration) *workerBackend {
	return &workerBackend{drv: drv, timeout: timeout}
}

func (b *workerBackend) activate(emit func(ev Event, done <-chan struct{}) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done != nil {
		return
	}
	done := make(chan struct{})
	b.done = done
	results := make(chan Event, 16)

	go b.readLoop(results, done)

	b.fwd.Add(1)
	go func() {
		defer b.fwd.Done()
		for {
			select {
			case <-done:
				return
			case ev := <-results:
				if !emit(ev, done) {
					return
				}
			}
		}
	}()
}

// deactivate stops forwarding immediately. The worker goroutine itself may
// still be parked inside the native wait or read call; it is not
// interrupted, only cut off: its channel is discarded and it exits on its
// next pass through the loop.
func (b *workerBackend) deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done == nil {
		return
	}
	close(b.done)
	b.done = nil
	b.fwd.Wait()
}

func (b *workerBackend) readLoop(results chan<- Event, done chan struct{}) {
	readTimeout := b.timeout
	if readTimeout <= 0 {
		readTimeout = waitSlice
	}
	for {
		select {
		case <-done:
			return
		default:
		}

		ready, err := b.drv.WaitReadable(waitSlice)
		if err != nil {
			b.send(results, done, Event{Err: err})
			return
		}
		if !ready {
			continue
		}

		chunk, err := b.drv.BlockingRead(maxChunkSize, readTimeout)
		if err != nil {
			// An error outranks any partial data; the loop stops
			// until the next activation.
			b.send(results, done, Event{Err: err})
			return
		}
		if len(chunk) == 0 {
			continue
		}
		if !b.send(results, done, Event{Data: chunk}) {
			return
		}
	}
}

func (b *workerBackend) send(results chan<- Event, done chan struct{}, ev Event) bool {
	select {
	case results <- ev:
		return true
	case <-done:
		return false
	}
}
