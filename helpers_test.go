package segarena

import (
	"testing"
)

type blockRecord struct {
	base *byte
	size int
	tag  string
}

// recordingAllocator is a heap-backed Allocator that remembers every call so
// tests can inspect how an arena talks to its backing allocator.
type recordingAllocator struct {
	t *testing.T

	allocs []blockRecord
	frees  []blockRecord
	live   map[*byte]int

	// failAt makes the allocation with this index (0-based) fail with err.
	failAt int
	err    error
}

func newRecordingAllocator(t *testing.T) *recordingAllocator {
	return &recordingAllocator{t: t, live: make(map[*byte]int), failAt: -1}
}

func (r *recordingAllocator) Allocate(size int, tag string) ([]byte, error) {
	if r.err != nil && len(r.allocs) == r.failAt {
		return nil, r.err
	}
	b := make([]byte, size)
	r.allocs = append(r.allocs, blockRecord{base: &b[0], size: size, tag: tag})
	r.live[&b[0]] = size
	return b, nil
}

func (r *recordingAllocator) Deallocate(block []byte, size int, tag string) {
	base := &block[0]
	want, ok := r.live[base]
	if !ok {
		r.t.Errorf("deallocate of unknown or already freed block (size %d)", size)
		return
	}
	if want != size {
		r.t.Errorf("deallocate size = %d, want %d", size, want)
	}
	delete(r.live, base)
	r.frees = append(r.frees, blockRecord{base: base, size: size, tag: tag})
}

func (r *recordingAllocator) Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error) {
	b, err := r.Allocate(newSize, tag)
	if err != nil {
		return nil, err
	}
	copy(b, block[:min(oldSize, newSize)])
	r.Deallocate(block, oldSize, tag)
	return b, nil
}

func (r *recordingAllocator) Strategy() Strategy {
	return StrategyGeneral
}

func (r *recordingAllocator) allocatedBytes() int {
	total := 0
	for _, rec := range r.allocs {
		total += rec.size
	}
	return total
}

func (r *recordingAllocator) freedBytes() int {
	total := 0
	for _, rec := range r.frees {
		total += rec.size
	}
	return total
}

// chain returns the segments of a from head to tail.
func chain(a *Arena) []*segment {
	var out []*segment
	for s := a.head; s != nil; s = s.next {
		out = append(out, s)
	}
	return out
}

func newTestArena(t *testing.T, segmentSize int) (*Arena, *recordingAllocator) {
	t.Helper()
	r := newRecordingAllocator(t)
	a, err := New(r, WithSegmentSize(segmentSize))
	if err != nil {
		t.Fatalf("New(%d) failed: %v", segmentSize, err)
	}
	return a, r
}
