package segarena

import (
	"go.uber.org/zap"
)

// Option configures an Arena.
type Option func(*Arena)

// WithSegmentSize sets the size of normal segments, header included. It must
// be larger than HeaderSize. Defaults to DefaultSegmentSize.
func WithSegmentSize(size int) Option {
	return func(a *Arena) {
		a.segmentSize = size
	}
}

// WithTag sets the tag passed to the backing allocator when the arena
// returns its segments on Release.
func WithTag(tag string) Option {
	return func(a *Arena) {
		a.tag = tag
	}
}

// WithLogger sets the logger for the arena
func WithLogger(logger *zap.Logger) Option {
	return func(a *Arena) {
		a.logger = logger
	}
}
