package segarena

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// UseLogger sets the package logger. Arenas created without WithLogger and
// the mmap allocator log through it.
func UseLogger(zapLogger *zap.Logger) {
	logger = zapLogger
}
