package typemgr

import (
	"github.com/wippyai/wasm-classlayout/classfile"
)

// FunctionManager is the view of the compiler's function bookkeeping the
// resolver and the metadata encoder need.
type FunctionManager interface {
	// MarkNeeded records that the method must be emitted.
	MarkNeeded(ref classfile.MethodRef)
	// IsNeeded reports whether the method is invoked anywhere.
	IsNeeded(ref classfile.MethodRef) bool
	// SetFunctionIndex records the vtable index of a virtual method,
	// including the VTableFirstFunctionIndex header words.
	SetFunctionIndex(ref classfile.MethodRef, idx int)
	// FunctionID returns the global function id written into vtables.
	FunctionID(ref classfile.MethodRef) int32
}

// TypeWriter receives each resolved struct during Finalize, in
// registration order, and returns its type code.
type TypeWriter interface {
	WriteStructType(t *StructType) (int, error)
}

// ArrayTypeWriter is implemented by writers that also emit array types.
// Finalize calls it for every registered array after all structs.
type ArrayTypeWriter interface {
	WriteArrayType(t *ArrayType) (int, error)
}
