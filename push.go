package serialstream

import (
	"sync"
	"time"
)

// pushBackend adapts a PushSource. The source already delivers
// asynchronously, so no worker goroutine is needed for the data itself;
// one goroutine multiplexes the data subscription, the device-event
// subscription and the optional inactivity timer onto the stream.
//
// With a configured timeout, one ErrInactivityTimeout event is injected per
// window in which no data arrives; the window resets on every delivery.
// Without one, the subscription delivers indefinitely, matching the
// unbounded default of the worker backend.
type pushBackend struct {
	src     PushSource
	timeout time.Duration

	mu   sync.Mutex
	done chan struct{} // nil when inactive
	wg   sync.WaitGroup
}

func newPushBackend(src PushSource, timeout time.Duration) *pushBackend {
	return &pushBackend{src: src, timeout: timeout}
}

func (b *pushBackend) activate(emit func(ev Event, done <-chan struct{}) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done != nil {
		return
	}
	done := make(chan struct{})
	b.done = done

	data, cancelData := b.src.Subscribe()
	devs, cancelDevs := b.src.DeviceEvents()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancelData()
		defer cancelDevs()

		var timer *time.Timer
		var inactivity <-chan time.Time
		if b.timeout > 0 {
			timer = time.NewTimer(b.timeout)
			defer timer.Stop()
			inactivity = timer.C
		}

		disconnected := false
		for {
			select {
			case <-done:
				return
			case chunk, ok := <-data:
				if !ok {
					return
				}
				if timer != nil {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(b.timeout)
				}
				if len(chunk) == 0 {
					continue
				}
				if !emit(Event{Data: chunk}, done) {
					return
				}
			case <-inactivity:
				timer.Reset(b.timeout)
				if !emit(Event{Err: ErrInactivityTimeout}, done) {
					return
				}
			case ev, ok := <-devs:
				if !ok {
					return
				}
				if ev.PortName != b.src.Name() || ev.Kind != DeviceDetached {
					continue
				}
				if disconnected {
					continue
				}
				disconnected = true
				if !emit(Event{Err: ErrDeviceDisconnected}, done) {
					return
				}
			}
		}
	}()
}

// deactivate cancels both subscriptions. Cooperative and prompt: the loop
// only ever blocks on channels.
func (b *pushBackend) deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done == nil {
		return
	}
	close(b.done)
	b.done = nil
	b.wg.Wait()
}
