package segarena

import (
	"go.uber.org/zap/zapcore"
)

// SizeInUse returns the number of bytes handed out by the arena, including
// the padding added by rounding to the word size.
func (a *Arena) SizeInUse() int {
	return a.inUse
}

// NumSegments returns the number of blocks in the chain, oversized blocks
// included.
func (a *Arena) NumSegments() int {
	return a.segments
}

// NumOversized returns the number of oversized blocks in the chain.
func (a *Arena) NumOversized() int {
	return a.oversized
}

// Capacity returns the total size of all blocks obtained from the backing
// allocator, headers included.
func (a *Arena) Capacity() int {
	return a.capacity
}

// Cursor returns the number of bytes consumed in the current segment.
func (a *Arena) Cursor() int {
	return a.allocated
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	if a.capacity == 0 {
		return 0
	}
	return float64(a.inUse) / float64(a.capacity)
}

// SegmentSize returns the size of a normal segment, header included.
func (a *Arena) SegmentSize() int {
	return a.segmentSize
}

// ArenaSize returns the usable capacity of a normal segment.
func (a *Arena) ArenaSize() int {
	return a.arenaSize
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumSegments: a.NumSegments(),
		Oversized:   a.NumOversized(),
		Cursor:      a.Cursor(),
		SegmentSize: a.SegmentSize(),
		Utilization: a.Utilization(),
	}
}

// Stats writes the arena metrics to enc.
func (a *Arena) Stats(enc zapcore.ObjectEncoder) error {
	enc.AddString("strategy", a.Strategy().String())
	return a.Metrics().MarshalLogObject(enc)
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes handed out
	Capacity    int     // Bytes obtained from the backing allocator
	NumSegments int     // Blocks in the chain
	Oversized   int     // Oversized blocks in the chain
	Cursor      int     // Bytes consumed in the current segment
	SegmentSize int     // Normal segment size
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (m ArenaMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("size_in_use", m.SizeInUse)
	enc.AddInt("capacity", m.Capacity)
	enc.AddInt("segments", m.NumSegments)
	enc.AddInt("oversized", m.Oversized)
	enc.AddInt("cursor", m.Cursor)
	enc.AddInt("segment_size", m.SegmentSize)
	enc.AddFloat64("utilization", m.Utilization)
	return nil
}
