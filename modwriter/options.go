package modwriter

import "go.uber.org/zap"

// Options configures a Writer.
type Options struct {
	// Logger overrides the package logger for this writer.
	Logger *zap.Logger
	// MemoryExport names the exported metadata memory. Empty keeps it private.
	MemoryExport string
	// MutableFields declares instance fields mutable. The vtable field is
	// always immutable.
	MutableFields bool
	// NameSection emits function and type names.
	NameSection bool
}

// DefaultOptions returns default writer configuration.
func DefaultOptions() Options {
	return Options{
		MemoryExport:  "memory",
		MutableFields: true,
		NameSection:   true,
	}
}
