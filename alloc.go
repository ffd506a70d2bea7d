package segarena

import (
	"unsafe"
)

// Alloc returns a pointer to a zeroed T stored inside the arena. T must not
// contain Go pointers: arena memory is not scanned by the garbage collector.
// The returned pointer is valid until the arena is released.
func Alloc[T any](a *Arena) (*T, error) {
	p, err := AllocUninitialized[T](a)
	if err != nil || p == nil {
		return p, err
	}
	clear(unsafe.Slice((*byte)(unsafe.Pointer(p)), unsafe.Sizeof(*p)))
	return p, nil
}

// AllocUninitialized returns a *T located in the arena without zeroing memory.
// This is faster than Alloc but the memory contents are undefined.
// A zero-sized T yields a nil pointer.
func AllocUninitialized[T any](a *Arena) (*T, error) {
	var zero T
	b, err := a.Allocate(int(unsafe.Sizeof(zero)), "")
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return (*T)(unsafe.Pointer(&b[0])), nil
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The slice elements are not initialized (contain garbage data).
// Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n), nil
	}
	if n > maxRequest/elemSize {
		return nil, ErrInvalidSize
	}
	b, err := a.Allocate(elemSize*n, "")
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil
}

// AllocSliceZeroed allocates a slice of n elements of type T with zeroed memory.
// This is slower than AllocSlice but ensures clean initialization.
func AllocSliceZeroed[T any](a *Arena, n int) ([]T, error) {
	s, err := AllocSlice[T](a, n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}
