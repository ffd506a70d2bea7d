//go:build unix

package segarena

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sys/unix"
)

// MmapAllocator serves blocks from anonymous private mappings, outside the
// Go garbage-collected heap. Blocks must not hold Go pointers. It is safe for
// concurrent use.
type MmapAllocator struct {
	live     atomic.Int64
	mappings atomic.Int64
}

// NewMmapAllocator returns an allocator backed by anonymous mappings.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{}
}

// Allocate maps size bytes of zeroed, private, read-write memory.
func (m *MmapAllocator) Allocate(size int, tag string) ([]byte, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return nil, nil
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap: map %d bytes (tag %q): %v: %w", size, tag, err, ErrOutOfMemory)
	}
	m.live.Add(int64(size))
	m.mappings.Inc()
	return b, nil
}

// Deallocate unmaps block. block must start where the mapping starts; its
// capacity, not size, decides how much is unmapped.
func (m *MmapAllocator) Deallocate(block []byte, size int, tag string) {
	if cap(block) == 0 {
		return
	}
	if err := unix.Munmap(block[:cap(block)]); err != nil {
		logger.Error("munmap failed",
			zap.Int("size", size),
			zap.String("tag", tag),
			zap.Error(err))
		return
	}
	m.live.Sub(int64(cap(block)))
	m.mappings.Dec()
}

// Reallocate maps a new block, copies the preserved prefix and unmaps the
// old one. Shrinking keeps the mapping and only reslices.
func (m *MmapAllocator) Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error) {
	if newSize < 0 {
		return nil, ErrInvalidSize
	}
	if newSize <= oldSize && newSize > 0 {
		return block[:newSize], nil
	}
	b, err := m.Allocate(newSize, tag)
	if err != nil {
		return nil, err
	}
	copy(b, block[:min(oldSize, newSize, len(block))])
	m.Deallocate(block, oldSize, tag)
	return b, nil
}

// Strategy returns StrategyGeneral.
func (m *MmapAllocator) Strategy() Strategy {
	return StrategyGeneral
}

// LiveBytes returns the number of mapped bytes not yet unmapped.
func (m *MmapAllocator) LiveBytes() int64 {
	return m.live.Load()
}

// Stats writes the mapping counters to enc.
func (m *MmapAllocator) Stats(enc zapcore.ObjectEncoder) error {
	enc.AddString("strategy", m.Strategy().String())
	enc.AddInt64("live_bytes", m.live.Load())
	enc.AddInt64("mappings", m.mappings.Load())
	return nil
}
