package message

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Pool recycles dispatch contexts to keep the hot path allocation-free.
// Callers must return every rented context exactly once; the bus does this
// with a deferred ReturnToPool so the exception path is covered too.
type Pool struct {
	pool sync.Pool

	// Observability counters
	rented   atomic.Int64
	returned atomic.Int64
}

// NewPool creates a context pool.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Context{items: make(map[string]any)}
			},
		},
	}
}

// Rent returns a clean context with a fresh correlation ID.
func (p *Pool) Rent() *Context {
	c := p.pool.Get().(*Context)
	c.CorrelationID = uuid.New().String()
	p.rented.Add(1)
	return c
}

// ReturnToPool resets the context and makes it available for reuse.
// The caller must not touch the context after returning it.
func (p *Pool) ReturnToPool(c *Context) {
	if c == nil {
		return
	}
	c.reset()
	p.returned.Add(1)
	p.pool.Put(c)
}

// Stats reports how many contexts have been rented and returned.
type Stats struct {
	Rented   int64
	Returned int64
}

// Stats returns pool usage counters for monitoring and leak detection.
func (p *Pool) Stats() Stats {
	return Stats{
		Rented:   p.rented.Load(),
		Returned: p.returned.Load(),
	}
}
