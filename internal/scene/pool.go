package scene

import "go.uber.org/zap"

// Pool recycles display handles. It is warmed with a fixed capacity;
// when every handle is in use, Acquire synthesizes extra ones rather
// than failing the user action. Synthesized handles are released back
// into the idle queue like any other, so sustained overflow grows the
// pool past its nominal capacity.
type Pool struct {
	idle        []*Handle
	capacity    int
	synthesized int
	nextID      int
	logger      *zap.Logger
}

// NewPool warms a pool with capacity idle handles.
func NewPool(capacity int, logger *zap.Logger) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pool{capacity: capacity, logger: logger}
	for i := 0; i < capacity; i++ {
		p.idle = append(p.idle, &Handle{id: p.nextID})
		p.nextID++
	}
	return p
}

// Acquire removes and returns an idle handle. When the idle queue is
// empty it synthesizes a new handle; this is the degraded path and is
// logged as such.
func (p *Pool) Acquire() *Handle {
	var h *Handle
	if n := len(p.idle); n > 0 {
		h = p.idle[0]
		p.idle = p.idle[1:]
	} else {
		h = &Handle{id: p.nextID, synthetic: true}
		p.nextID++
		p.synthesized++
		p.logger.Warn("display pool exhausted, synthesizing handle",
			zap.Int("capacity", p.capacity),
			zap.Int("synthesized", p.synthesized))
	}
	h.inUse = true
	return h
}

// Release deactivates h and returns it to the idle queue. Nil and
// already-idle handles are ignored; Release never errors.
func (p *Pool) Release(h *Handle) {
	if h == nil || !h.inUse {
		return
	}
	h.reset()
	p.idle = append(p.idle, h)
}

// Idle returns the number of handles waiting in the pool.
func (p *Pool) Idle() int { return len(p.idle) }

// Capacity returns the warm-up size of the pool.
func (p *Pool) Capacity() int { return p.capacity }

// Synthesized returns how many handles were created on the overflow
// path since warm-up.
func (p *Pool) Synthesized() int { return p.synthesized }

// Total returns every handle the pool has ever created. At any point
// Total() == Idle() + number of handles held by the active set.
func (p *Pool) Total() int { return p.capacity + p.synthesized }
