package typemgr

import (
	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/classfile"
)

// VTableFieldName names the synthetic first field of every root struct.
// The leading dot keeps it apart from any Java identifier.
const VTableFieldName = ".vtable"

// VTableFirstFunctionIndex is the number of header words in front of the
// function ids of a metadata record. Slot indexes handed to the function
// manager include it.
const VTableFirstFunctionIndex = 2

// Options configures a Registry.
type Options struct {
	// Logger overrides the package logger for this registry.
	Logger *zap.Logger
	// RootClass is the class whose ".vtable" field the callVirtual helper reads.
	RootClass string
}

// DefaultOptions returns the default registry configuration.
func DefaultOptions() Options {
	return Options{
		RootClass: classfile.ObjectClass,
	}
}
