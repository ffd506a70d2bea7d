package segarena

import (
	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// releaser is implemented by allocators that own memory until told
// otherwise, such as Arena.
type releaser interface {
	Release()
}

type sharedRef struct {
	base Allocator
	refs atomic.Int32
}

// Shared lets several owners use one Allocator without owning or copying it.
// A Shared value is a handle: copying or assigning it only copies the alias,
// never the allocator behind it. The zero value aliases nothing.
type Shared struct {
	ref *sharedRef
}

// NewShared returns a handle on base holding one reference. base should be
// a pointer so that identity comparison is meaningful.
func NewShared(base Allocator) Shared {
	r := &sharedRef{base: base}
	r.refs.Store(1)
	return Shared{ref: r}
}

// Target returns the aliased allocator, or nil for the zero Shared.
func (s Shared) Target() Allocator {
	if s.ref == nil {
		return nil
	}
	return s.ref.base
}

// Equal reports whether s and o alias the same allocator. Handles created by
// separate NewShared calls over the same allocator are equal.
func (s Shared) Equal(o Shared) bool {
	return s.Target() == o.Target()
}

// Retain takes another reference and returns a handle sharing it.
func (s Shared) Retain() Shared {
	s.ref.refs.Inc()
	return s
}

// Release drops one reference. Dropping the last one releases the target
// when it holds memory in bulk, e.g. an Arena.
func (s Shared) Release() {
	if s.ref.refs.Dec() != 0 {
		return
	}
	if r, ok := s.ref.base.(releaser); ok {
		r.Release()
	}
}

// Refs returns the current reference count.
func (s Shared) Refs() int32 {
	return s.ref.refs.Load()
}

func (s Shared) Allocate(size int, tag string) ([]byte, error) {
	return s.ref.base.Allocate(size, tag)
}

func (s Shared) Deallocate(block []byte, size int, tag string) {
	s.ref.base.Deallocate(block, size, tag)
}

func (s Shared) Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error) {
	return s.ref.base.Reallocate(newSize, block, oldSize, tag)
}

func (s Shared) Strategy() Strategy {
	return s.ref.base.Strategy()
}

// Stats forwards to the target when it reports stats.
func (s Shared) Stats(enc zapcore.ObjectEncoder) error {
	enc.AddInt32("refs", s.Refs())
	if r, ok := s.ref.base.(StatsReporter); ok {
		return r.Stats(enc)
	}
	return nil
}
