package serialstream

import "sync"

// PipeSource is an in-process PushSource. It backs the reader tests and
// lets applications bridge their own asynchronous byte feeds (a USB
// transport callback, a network relay) into a Reader without a native port.
//
// Push fans the chunk out to every live subscription; a subscriber that is
// not keeping up has the chunk dropped rather than blocking the pusher.
type PipeSource struct {
	name string

	mu      sync.Mutex
	subs    map[int]chan []byte
	devSubs map[int]chan DeviceEvent
	nextID  int
	closed  bool
}

var _ PushSource = (*PipeSource)(nil)

// NewPipeSource creates a source identified by name. The name is what
// device detach events are matched against.
func NewPipeSource(name string) *PipeSource {
	return &PipeSource{
		name:    name,
		subs:    make(map[int]chan []byte),
		devSubs: make(map[int]chan DeviceEvent),
	}
}

func (s *PipeSource) Name() string { return s.name }

func (s *PipeSource) Subscribe() (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan []byte, 64)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

func (s *PipeSource) DeviceEvents() (<-chan DeviceEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan DeviceEvent, 8)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.devSubs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.devSubs[id]; ok {
			delete(s.devSubs, id)
			close(sub)
		}
	}
}

// Push delivers a copy of b to every live byte subscription.
func (s *PipeSource) Push(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, sub := range s.subs {
		chunk := make([]byte, len(b))
		copy(chunk, b)
		select {
		case sub <- chunk:
		default:
			// subscriber not keeping up, drop
		}
	}
}

// Announce delivers a device event to every live device subscription.
func (s *PipeSource) Announce(ev DeviceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, sub := range s.devSubs {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Close ends all subscriptions. Safe to call multiple times.
func (s *PipeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub)
	}
	for id, sub := range s.devSubs {
		delete(s.devSubs, id)
		close(sub)
	}
	return nil
}
