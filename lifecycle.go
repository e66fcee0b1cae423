package serialstream

import (
	"sync"

	"go.uber.org/atomic"
)

// State is the position of a reader in its stream lifecycle.
type State int

const (
	// StateIdle means no subscriber has activated the stream yet.
	StateIdle State = iota
	// StateActive means backend resources are live and delivering.
	StateActive
	// StatePaused means delivery is stopped but the reader can resume.
	StatePaused
	// StateClosed is terminal; no further activation is permitted.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// lifecycle drives the Idle -> Active <-> Paused -> Closed state machine
// shared by both backends. Activation and deactivation hooks create and
// tear down backend resources; the release hook runs exactly once, when the
// stream itself is let go.
type lifecycle struct {
	mu     sync.Mutex
	state  State
	closed atomic.Bool

	activate   func()
	deactivate func()
	release    func()
}

func newLifecycle(activate, deactivate, release func()) *lifecycle {
	return &lifecycle{
		state:      StateIdle,
		activate:   activate,
		deactivate: deactivate,
		release:    release,
	}
}

// Activate moves Idle or Paused to Active, creating fresh backend
// resources. Activating an already-active lifecycle is a no-op. Returns
// ErrClosed after Close.
func (l *lifecycle) Activate() error {
	if l.closed.Load() {
		return ErrClosed
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case StateClosed:
		return ErrClosed
	case StateActive:
		return nil
	}
	l.state = StateActive
	l.activate()
	return nil
}

// Deactivate moves Active to Paused, tearing down backend resources.
// Idempotent: calling it while Idle, Paused or Closed does nothing.
func (l *lifecycle) Deactivate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != StateActive {
		return
	}
	l.state = StatePaused
	l.deactivate()
}

// Close moves any state to Closed, deactivating first if needed, then runs
// the release hook. Subsequent calls are no-ops.
func (l *lifecycle) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return
	}
	if l.state == StateActive {
		l.deactivate()
	}
	l.state = StateClosed
	l.closed.Store(true)
	l.release()
}

func (l *lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
