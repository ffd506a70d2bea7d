package segarena

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// DefaultSegmentSize is the default size of a normal segment (64 KiB),
	// header included.
	DefaultSegmentSize = 1 << 16
	// HeaderSize is the number of bytes at the start of every segment
	// reserved for its header: the chain ordinal and the block size, one
	// word each.
	HeaderSize = 2 * WordSize

	maxRequest = math.MaxInt - HeaderSize - WordSize
)

// segment is one block obtained from the backing allocator. Each segment
// owns the one allocated before it through next.
type segment struct {
	buf  []byte // exactly the block the backing allocator returned
	size int    // size the block was obtained with
	next *segment
}

// Arena is a segment-chaining bump allocator. Not goroutine-safe; wrap it
// in Locked for concurrent access.
//
// Memory handed out by an Arena is held until Release. Deallocate does
// nothing and Reallocate never frees the old block: an Arena leaks every
// block until it is released, and callers must not expect reuse.
type Arena struct {
	backing     Allocator
	segmentSize int
	arenaSize   int
	tag         string
	logger      *zap.Logger

	head      *segment
	allocated int // bytes consumed in head's usable region
	released  bool

	segments  int
	oversized int
	capacity  int
	inUse     int
}

// New creates an empty Arena drawing its segments from backing. A nil
// backing allocator means a fresh HeapAllocator.
func New(backing Allocator, opts ...Option) (*Arena, error) {
	if backing == nil {
		backing = NewHeapAllocator()
	}
	a := &Arena{
		backing:     backing,
		segmentSize: DefaultSegmentSize,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.segmentSize <= HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header alone takes %d", ErrInvalidSegmentSize, a.segmentSize, HeaderSize)
	}
	a.arenaSize = a.segmentSize - HeaderSize
	return a, nil
}

// Allocate returns size bytes carved from the arena. The returned slice has
// length size and a capacity rounded up to the word size, and starts on a
// word boundary relative to its segment. A zero size returns nil without
// touching the arena. Errors from the backing allocator are returned
// unchanged.
func (a *Arena) Allocate(size int, tag string) ([]byte, error) {
	if size <= 0 {
		if size < 0 {
			return nil, ErrInvalidSize
		}
		return nil, nil
	}
	if size > maxRequest {
		return nil, fmt.Errorf("arena: allocate %d bytes: %w", size, ErrOutOfMemory)
	}
	n := roundUp(size)

	// Fast path: bump inside the head segment
	if h := a.head; h != nil && n < a.arenaSize && a.allocated+n <= a.arenaSize {
		off := HeaderSize + a.allocated
		a.allocated += n
		a.inUse += n
		return h.buf[off : off+size : off+n], nil
	}

	return a.allocateSlow(size, n, tag)
}

// allocateSlow obtains a new segment or an oversized block.
func (a *Arena) allocateSlow(size, n int, tag string) ([]byte, error) {
	if a.released {
		panic("arena: use after Release()")
	}

	if a.head != nil && n >= a.arenaSize {
		s, err := a.obtain(HeaderSize+n, tag)
		if err != nil {
			return nil, err
		}
		s.next = a.head.next
		a.head.next = s
		a.oversized++
		a.inUse += n
		a.logger.Debug("oversized block spliced",
			zap.Int("size", s.size),
			zap.String("tag", tag),
			zap.Int("segments", a.segments))
		return s.buf[HeaderSize : HeaderSize+size : HeaderSize+n], nil
	}

	if a.head == nil && n > a.arenaSize {
		// Nothing to splice after yet: the block becomes the head and is
		// marked full so the next normal request starts a fresh segment.
		s, err := a.obtain(HeaderSize+n, tag)
		if err != nil {
			return nil, err
		}
		a.head = s
		a.allocated = a.arenaSize
		a.oversized++
		a.inUse += n
		a.logger.Debug("oversized block became head",
			zap.Int("size", s.size),
			zap.String("tag", tag))
		return s.buf[HeaderSize : HeaderSize+size : HeaderSize+n], nil
	}

	s, err := a.obtain(a.segmentSize, tag)
	if err != nil {
		return nil, err
	}
	s.next = a.head
	a.head = s
	a.allocated = n
	a.inUse += n
	a.logger.Debug("segment acquired",
		zap.Int("size", s.size),
		zap.String("tag", tag),
		zap.Int("segments", a.segments))
	return s.buf[HeaderSize : HeaderSize+size : HeaderSize+n], nil
}

// obtain gets a block of size bytes from the backing allocator and writes
// its header.
func (a *Arena) obtain(size int, tag string) (*segment, error) {
	buf, err := a.backing.Allocate(size, tag)
	if err != nil {
		return nil, err
	}
	a.segments++
	a.capacity += size
	putWord(buf[:WordSize], uint64(a.segments))
	putWord(buf[WordSize:HeaderSize], uint64(size))
	return &segment{buf: buf, size: size}, nil
}

// Deallocate does nothing. Arena memory is only reclaimed by Release.
func (a *Arena) Deallocate(block []byte, size int, tag string) {}

// Reallocate returns p itself, resliced, when newSize <= oldSize. Otherwise
// it allocates newSize bytes and copies the first oldSize bytes of p there.
// The old block stays allocated until Release.
func (a *Arena) Reallocate(newSize int, p []byte, oldSize int, tag string) ([]byte, error) {
	if newSize < 0 {
		return nil, ErrInvalidSize
	}
	if newSize <= oldSize {
		return p[:min(newSize, cap(p))], nil
	}
	q, err := a.Allocate(newSize, tag)
	if err != nil {
		return nil, err
	}
	copy(q, p[:min(oldSize, cap(p))])
	return q, nil
}

// Strategy returns StrategyArena.
func (a *Arena) Strategy() Strategy {
	return StrategyArena
}

// Release returns every segment to the backing allocator, head first, and
// makes the arena unusable. Memory previously handed out must not be used
// afterwards. Calling Release again does nothing.
func (a *Arena) Release() {
	if a.released {
		return
	}
	n, total := a.segments, a.capacity
	for s := a.head; s != nil; {
		next := s.next
		s.next = nil
		a.backing.Deallocate(s.buf, s.size, a.tag)
		s = next
	}
	a.head = nil
	a.allocated = 0
	a.segments, a.oversized, a.capacity, a.inUse = 0, 0, 0, 0
	a.released = true
	a.logger.Debug("arena released",
		zap.Int("segments", n),
		zap.Int("bytes", total),
		zap.String("tag", a.tag))
}

func putWord(b []byte, v uint64) {
	if WordSize == 8 {
		binary.NativeEndian.PutUint64(b, v)
		return
	}
	binary.NativeEndian.PutUint32(b, uint32(v))
}
