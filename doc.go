// Package segarena implements a segment-chaining bump allocator (memory arena).
//
// # Overview
//
// An Arena obtains fixed-size segments from a backing Allocator and hands
// out memory by bumping a cursor inside the newest segment. Objects are
// never freed one by one: the whole chain is returned to the backing
// allocator when the arena is released. This suits short-lived, high-churn
// workloads such as compiler or runtime internal data structures.
//
// # Basic Usage
//
//	a, err := segarena.New(segarena.NewHeapAllocator())
//	if err != nil {
//		return err
//	}
//	defer a.Release() // returns every segment at once
//
//	buf, err := a.Allocate(1024, "symbols")
//	p, err := segarena.Alloc[node](a)
//	s, err := segarena.AllocSlice[uint32](a, 100)
//
// # Memory Layout
//
// Every segment starts with a HeaderSize header. Requests are rounded up to
// the word size and served in three ways:
//
//   - bump: the request fits in the current segment
//   - fresh segment: the current segment is full, a new segment of the
//     configured size becomes the head of the chain
//   - oversized block: the request cannot fit even an empty segment, so a
//     block of exactly HeaderSize plus the request is spliced in right after
//     the head, leaving the head and its cursor untouched
//
// # Backing Allocators
//
// HeapAllocator forwards to the Go heap. MmapAllocator maps anonymous memory
// outside the garbage-collected heap. Shared lets several owners alias one
// allocator, and Locked serializes an allocator for use from several
// goroutines. An Arena is itself an Allocator, so arenas can be shared and
// stacked.
//
// # Important Notes
//
//   - Arena is not goroutine-safe; wrap it in Locked if it must be shared
//   - Deallocate is a no-op and Reallocate never frees the old block
//   - Memory handed out is only valid until Release
//   - Arena memory must not hold Go pointers
package segarena
