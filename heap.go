package segarena

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// HeapOption configures a HeapAllocator.
type HeapOption func(*HeapAllocator)

// WithHeapLimit caps the number of live bytes a HeapAllocator hands out.
// Requests past the cap fail with ErrOutOfMemory. Zero means no cap.
func WithHeapLimit(limit int64) HeapOption {
	return func(h *HeapAllocator) {
		h.limit = limit
	}
}

// HeapAllocator forwards every request to the Go heap. It is safe for
// concurrent use.
type HeapAllocator struct {
	limit int64

	live     atomic.Int64
	allocs   atomic.Int64
	frees    atomic.Int64
	failures atomic.Int64
}

// NewHeapAllocator returns a heap-backed allocator.
func NewHeapAllocator(opts ...HeapOption) *HeapAllocator {
	h := &HeapAllocator{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Allocate returns a new block of size bytes.
func (h *HeapAllocator) Allocate(size int, tag string) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if err := h.reserve(int64(size)); err != nil {
		return nil, fmt.Errorf("heap: allocate %d bytes (tag %q): %w", size, tag, err)
	}
	b, err := makeBlock(size)
	if err != nil {
		h.live.Sub(int64(size))
		h.failures.Inc()
		return nil, fmt.Errorf("heap: allocate %d bytes (tag %q): %w", size, tag, err)
	}
	h.allocs.Inc()
	return b, nil
}

// Deallocate drops the accounting for block; the garbage collector
// reclaims the memory once nothing references it.
func (h *HeapAllocator) Deallocate(block []byte, size int, tag string) {
	h.live.Sub(int64(size))
	h.frees.Inc()
}

// Reallocate grows block in place when its capacity allows, otherwise moves
// it to a new block.
func (h *HeapAllocator) Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error) {
	if newSize < 0 {
		return nil, ErrInvalidSize
	}
	if newSize <= cap(block) {
		if delta := int64(newSize - oldSize); delta > 0 {
			if err := h.reserve(delta); err != nil {
				return nil, fmt.Errorf("heap: reallocate %d to %d bytes (tag %q): %w", oldSize, newSize, tag, err)
			}
		} else {
			h.live.Add(delta)
		}
		return block[:newSize], nil
	}
	b, err := h.Allocate(newSize, tag)
	if err != nil {
		return nil, err
	}
	copy(b, block[:min(oldSize, len(block))])
	h.Deallocate(block, oldSize, tag)
	return b, nil
}

// Strategy returns StrategyGeneral.
func (h *HeapAllocator) Strategy() Strategy {
	return StrategyGeneral
}

// LiveBytes returns the number of bytes handed out and not yet deallocated.
func (h *HeapAllocator) LiveBytes() int64 {
	return h.live.Load()
}

// Stats writes the allocator counters to enc.
func (h *HeapAllocator) Stats(enc zapcore.ObjectEncoder) error {
	enc.AddString("strategy", h.Strategy().String())
	enc.AddInt64("live_bytes", h.live.Load())
	enc.AddInt64("limit", h.limit)
	enc.AddInt64("allocations", h.allocs.Load())
	enc.AddInt64("deallocations", h.frees.Load())
	enc.AddInt64("failures", h.failures.Load())
	return nil
}

func (h *HeapAllocator) reserve(n int64) error {
	live := h.live.Add(n)
	if h.limit > 0 && live > h.limit {
		h.live.Sub(n)
		h.failures.Inc()
		return ErrOutOfMemory
	}
	return nil
}

// makeBlock turns the runtime's length panic for absurd sizes into
// ErrOutOfMemory.
func makeBlock(size int) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, ErrOutOfMemory
		}
	}()
	return make([]byte, size), nil
}
