package segarena

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// Locked is a mutex-protected wrapper that makes any Allocator safe for
// concurrent use, including an Arena. All operations come with the overhead
// of mutex locking.
type Locked struct {
	mu sync.Mutex
	a  Allocator
}

// NewLocked wraps a.
func NewLocked(a Allocator) *Locked {
	return &Locked{a: a}
}

// Allocate thread-safely allocates size bytes.
func (l *Locked) Allocate(size int, tag string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Allocate(size, tag)
}

// Deallocate thread-safely releases block.
func (l *Locked) Deallocate(block []byte, size int, tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Deallocate(block, size, tag)
}

// Reallocate thread-safely resizes block.
func (l *Locked) Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Reallocate(newSize, block, oldSize, tag)
}

// Strategy returns the wrapped allocator's strategy.
func (l *Locked) Strategy() Strategy {
	return l.a.Strategy()
}

// Release thread-safely releases the wrapped allocator if it holds memory
// in bulk.
func (l *Locked) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.a.(releaser); ok {
		r.Release()
	}
}

// Stats thread-safely forwards to the wrapped allocator.
func (l *Locked) Stats(enc zapcore.ObjectEncoder) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.a.(StatsReporter); ok {
		return r.Stats(enc)
	}
	return nil
}

// Do runs fn with the lock held so that several calls on the wrapped
// allocator happen atomically.
func (l *Locked) Do(fn func(a Allocator) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(l.a)
}
