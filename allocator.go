package segarena

import (
	"errors"
	"unsafe"

	"go.uber.org/zap/zapcore"
)

// WordSize is the machine word size. Every arena allocation is rounded up
// to a multiple of it.
const WordSize = int(unsafe.Sizeof(uintptr(0)))

var (
	// ErrOutOfMemory is reported by a backing allocator that cannot supply
	// a block. Arenas propagate it unchanged.
	ErrOutOfMemory = errors.New("segarena: out of memory")
	// ErrInvalidSize is returned for negative allocation sizes.
	ErrInvalidSize = errors.New("segarena: invalid allocation size")
	// ErrInvalidSegmentSize is returned by New when the segment size cannot
	// hold the segment header plus at least one word.
	ErrInvalidSegmentSize = errors.New("segarena: invalid segment size")
)

// Strategy tells callers whether Deallocate actually gives memory back.
type Strategy int

const (
	// StrategyGeneral allocators free each block on Deallocate.
	StrategyGeneral Strategy = iota
	// StrategyArena allocators ignore Deallocate and reclaim everything at
	// once when released.
	StrategyArena
)

func (s Strategy) String() string {
	switch s {
	case StrategyGeneral:
		return "general"
	case StrategyArena:
		return "arena"
	default:
		return "unknown"
	}
}

// Allocator is the contract an arena draws its segments from. The tag is an
// opaque diagnostic label and never changes behavior.
type Allocator interface {
	// Allocate returns a block with len(block) == size. Contents are not
	// guaranteed to be zeroed.
	Allocate(size int, tag string) ([]byte, error)
	// Deallocate releases a block obtained from Allocate or Reallocate.
	// size must be the size the block was obtained with.
	Deallocate(block []byte, size int, tag string)
	// Reallocate resizes block, possibly moving it. The first
	// min(oldSize, newSize) bytes are preserved.
	Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error)
	// Strategy reports how Deallocate behaves.
	Strategy() Strategy
}

// StatsReporter is implemented by allocators that can report their usage.
type StatsReporter interface {
	Stats(enc zapcore.ObjectEncoder) error
}

// roundUp rounds n up to the next multiple of WordSize.
func roundUp(n int) int {
	const mask = WordSize - 1
	return (n + mask) &^ mask
}
