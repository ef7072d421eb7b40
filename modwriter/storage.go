package modwriter

import (
	"github.com/wippyai/wasm-classlayout/errors"
	"github.com/wippyai/wasm-classlayout/typemgr"
	"github.com/wippyai/wasm-classlayout/wasm"
)

// StorageOf maps a JVM field descriptor to a GC storage type. References
// use the abstract struct and array heap types, so a field has the same
// type in every struct that inherits it.
func StorageOf(desc string) (wasm.StorageType, error) {
	if desc == "" {
		return wasm.StorageType{}, errors.InvalidInput(errors.PhaseEncode, "empty field descriptor")
	}
	if len(desc) == 1 {
		if v, ok := typemgr.ValueTypeOf(desc[0]); ok {
			return storageOfValue(v), nil
		}
	}
	switch desc[0] {
	case 'L':
		if len(desc) > 2 && desc[len(desc)-1] == ';' {
			return refStorage(wasm.HeapTypeStruct), nil
		}
	case '[':
		if len(desc) > 1 {
			return refStorage(wasm.HeapTypeArray), nil
		}
	}
	return wasm.StorageType{}, errors.InvalidInput(errors.PhaseEncode, "malformed field descriptor "+desc)
}

func storageOfValue(v typemgr.ValueType) wasm.StorageType {
	switch v {
	case typemgr.ValueI64:
		return wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValI64}
	case typemgr.ValueF32:
		return wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValF32}
	case typemgr.ValueF64:
		return wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValF64}
	case typemgr.ValueI8:
		return wasm.StorageType{Kind: wasm.StorageKindPacked, Packed: wasm.PackedI8}
	case typemgr.ValueI16:
		return wasm.StorageType{Kind: wasm.StorageKindPacked, Packed: wasm.PackedI16}
	default:
		return wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValI32}
	}
}

func refStorage(heapType int64) wasm.StorageType {
	return wasm.StorageType{
		Kind:    wasm.StorageKindRef,
		RefType: wasm.RefType{Nullable: true, HeapType: heapType},
	}
}
