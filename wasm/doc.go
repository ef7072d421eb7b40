// Package wasm provides the WebAssembly binary encoding used by the class
// layout writer.
//
// The package models the part of a module the layout manager produces:
// GC struct and array types arranged as subtype chains, the function types
// of synthetic helpers, one linear memory holding the type metadata blob,
// exports, code and active data segments.
//
// # Encoding
//
// Build a module and encode it:
//
//	m := &wasm.Module{}
//	obj := m.AddTypeDef(wasm.TypeDef{
//	    Kind: wasm.TypeDefKindSub,
//	    Sub: &wasm.SubType{CompType: wasm.CompType{
//	        Kind:   wasm.CompKindStruct,
//	        Struct: &wasm.StructType{Fields: []wasm.FieldType{{Type: wasm.StorageType{ValType: wasm.ValI32}}}},
//	    }},
//	})
//	data := m.Encode()
//
// Subtypes name their parent type index in SubType.Parents; a non-final
// SubType is always written with the explicit sub prefix so later types
// may extend it.
//
// # Instructions
//
// Code assembles function bodies:
//
//	body := wasm.NewCode().
//	    LocalGet(0).
//	    StructGet(obj, 0).
//	    LocalGet(1).
//	    Op(wasm.OpI32Add).
//	    I32Load(0, 2).
//	    Op(wasm.OpReturn).
//	    End().
//	    Bytes()
//
// # Decoding and validation
//
// ParseModule reads back the sections Encode writes; Validate checks index
// bounds and that every struct subtype extends its supertype's fields.
// ParseModuleValidate does both.
package wasm
