package mic

import "sync"

// Ring keeps the most recent samples written to it. Write is called from the
// capture callback; Snapshot from the display loop.
type Ring struct {
	mu   sync.Mutex
	buf  []float32
	pos  int
	full bool
}

func NewRing(capacity int) *Ring {
	return &Ring{buf: make([]float32, max(capacity, 1))}
}

func (r *Ring) Cap() int { return len(r.buf) }

func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(samples) >= len(r.buf) {
		copy(r.buf, samples[len(samples)-len(r.buf):])
		r.pos = 0
		r.full = true
		return
	}
	n := copy(r.buf[r.pos:], samples)
	if n < len(samples) {
		copy(r.buf, samples[n:])
	}
	next := r.pos + len(samples)
	if next >= len(r.buf) {
		r.full = true
	}
	r.pos = next % len(r.buf)
}

// Snapshot copies the newest len(dst) samples into dst, oldest first, and
// returns how many were available. Missing history is left as zeros at the
// front of dst.
func (r *Ring) Snapshot(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	have := r.pos
	if r.full {
		have = len(r.buf)
	}
	n := min(len(dst), have)
	clear(dst[:len(dst)-n])
	out := dst[len(dst)-n:]
	start := (r.pos - n + len(r.buf)) % len(r.buf)
	c := copy(out, r.buf[start:min(start+n, len(r.buf))])
	copy(out[c:], r.buf[:n-c])
	return n
}

func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.buf)
	r.pos = 0
	r.full = false
}
