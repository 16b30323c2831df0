package framegrab

import (
	"context"
	"sync"
)

// A BufferPool counts hardware buffers that have been handed to a consumer
// as frames but not yet released. The acquisition loop's shutdown path uses
// it to keep the camera handle alive while consumer-held buffers still point
// into hardware memory.
//
// Increment and Decrement cross goroutines (frames are released from the
// consumer's side), so the counter lives behind a mutex.
type BufferPool struct {
	mu    sync.Mutex
	inUse int
	idle  chan struct{}
}

// NewBufferPool returns an idle pool.
func NewBufferPool() *BufferPool {
	p := &BufferPool{}
	p.idle = closedChan()
	return p
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Increment records one buffer handed to a consumer.
func (p *BufferPool) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inUse == 0 {
		p.idle = make(chan struct{})
	}
	p.inUse++
}

// Decrement records one buffer coming back. Decrementing an idle pool is a
// programming error; the count can never go negative.
func (p *BufferPool) Decrement() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inUse == 0 {
		panic("framegrab: BufferPool.Decrement below zero")
	}
	p.inUse--
	if p.inUse == 0 {
		close(p.idle)
	}
}

// InUse reports whether any consumer still holds an unreleased frame.
func (p *BufferPool) InUse() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inUse > 0
}

// Reset zeroes the counter. Called once at the start of each acquisition
// run, before any frame is handed out.
func (p *BufferPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inUse = 0
	p.idle = closedChan()
}

// WaitUntilIdle blocks until every handed-out buffer has been released or
// the context is done.
func (p *BufferPool) WaitUntilIdle(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
