package serialstream

import (
	"bytes"
	"sync"
)

// pendingBuffer accumulates delivered bytes that the synchronous Read
// accessor has not claimed yet. Push and consume are serialized by a single
// mutex; at all times bytes pushed = bytes consumed + buffered length.
type pendingBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (p *pendingBuffer) push(b []byte) {
	if len(b) == 0 {
		return
	}
	p.mu.Lock()
	p.buf.Write(b)
	p.mu.Unlock()
}

// take returns the first n buffered bytes and retains the remainder, or nil
// if fewer than n bytes are buffered.
func (p *pendingBuffer) take(n int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buf.Len() < n {
		return nil
	}
	out := make([]byte, n)
	p.buf.Read(out)
	return out
}

func (p *pendingBuffer) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Len()
}

func (p *pendingBuffer) reset() {
	p.mu.Lock()
	p.buf.Reset()
	p.mu.Unlock()
}
