//go:build !unix

package segarena

import (
	"errors"

	"go.uber.org/zap/zapcore"
)

var errMmapUnsupported = errors.New("segarena: anonymous mappings are not supported on this platform")

// MmapAllocator is unavailable on this platform; every Allocate fails.
type MmapAllocator struct{}

// NewMmapAllocator returns an allocator whose requests always fail.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{}
}

func (m *MmapAllocator) Allocate(size int, tag string) ([]byte, error) {
	return nil, errMmapUnsupported
}

func (m *MmapAllocator) Deallocate(block []byte, size int, tag string) {}

func (m *MmapAllocator) Reallocate(newSize int, block []byte, oldSize int, tag string) ([]byte, error) {
	return nil, errMmapUnsupported
}

func (m *MmapAllocator) Strategy() Strategy {
	return StrategyGeneral
}

func (m *MmapAllocator) LiveBytes() int64 {
	return 0
}

func (m *MmapAllocator) Stats(enc zapcore.ObjectEncoder) error {
	enc.AddString("strategy", m.Strategy().String())
	return nil
}
