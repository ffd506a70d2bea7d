package segarena

import (
	"errors"
	"sort"
	"testing"
	"unsafe"

	"github.com/lni/goutils/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func TestNewLocked(t *testing.T) {
	h := NewHeapAllocator()
	l := NewLocked(h)
	require.NotNil(t, l)
	assert.Same(t, h, l.a)
	assert.Equal(t, StrategyGeneral, l.Strategy())
}

func TestLockedOperations(t *testing.T) {
	r := newRecordingAllocator(t)
	l := NewLocked(r)

	b, err := l.Allocate(16, "locked")
	require.NoError(t, err)
	b, err = l.Reallocate(32, b, 16, "locked")
	require.NoError(t, err)
	assert.Len(t, b, 32)
	l.Deallocate(b, 32, "locked")
	assert.Empty(t, r.live)

	// Release is a no-op for allocators that free block by block.
	l.Release()
}

func TestLockedArenaConcurrency(t *testing.T) {
	defer leaktest.AfterTest(t)()

	h := NewHeapAllocator()
	a, err := New(h, WithSegmentSize(1024))
	require.NoError(t, err)
	l := NewLocked(a)
	assert.Equal(t, StrategyArena, l.Strategy())

	const numGoroutines = 10
	const numAllocsPerGoroutine = 100

	type span struct{ start, end uintptr }
	results := make([][]span, numGoroutines)

	var g errgroup.Group
	for i := 0; i < numGoroutines; i++ {
		i := i
		g.Go(func() error {
			for j := 0; j < numAllocsPerGoroutine; j++ {
				size := 8 + (j%4)*56
				if j%25 == 0 {
					size = 2000 // oversized
				}
				b, err := l.Allocate(size, "")
				if err != nil {
					return err
				}
				if len(b) != size {
					return errors.New("short allocation")
				}
				start := uintptr(unsafe.Pointer(&b[0]))
				results[i] = append(results[i], span{start, start + uintptr(size)})
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var all []span
	for _, r := range results {
		all = append(all, r...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].start < all[j].start })
	for i := 1; i < len(all); i++ {
		if all[i].start < all[i-1].end {
			t.Fatalf("allocations overlap: [%x,%x) and [%x,%x)",
				all[i-1].start, all[i-1].end, all[i].start, all[i].end)
		}
	}

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, l.Stats(enc))
	assert.Equal(t, "arena", enc.Fields["strategy"])
	assert.Equal(t, int(h.LiveBytes()), enc.Fields["capacity"])

	l.Release()
	assert.Equal(t, int64(0), h.LiveBytes())
}

func TestLockedDo(t *testing.T) {
	a, _ := newTestArena(t, 256)
	l := NewLocked(a)
	defer l.Release()

	var first, second []byte
	err := l.Do(func(al Allocator) error {
		var err error
		if first, err = al.Allocate(8, ""); err != nil {
			return err
		}
		second, err = al.Allocate(8, "")
		return err
	})
	require.NoError(t, err)
	gap := uintptr(unsafe.Pointer(&second[0])) - uintptr(unsafe.Pointer(&first[0]))
	assert.Equal(t, uintptr(8), gap)

	sentinel := errors.New("stop")
	assert.Same(t, sentinel, l.Do(func(Allocator) error { return sentinel }))
}

func TestLockedSharedHeapAcrossArenas(t *testing.T) {
	defer leaktest.AfterTest(t)()

	h := NewHeapAllocator()
	backing := NewShared(NewLocked(h))

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			a, err := New(backing, WithSegmentSize(512))
			if err != nil {
				return err
			}
			defer a.Release()
			for j := 0; j < 200; j++ {
				if _, err := a.Allocate(64, ""); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int64(0), h.LiveBytes())
}
