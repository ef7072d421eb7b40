// Package typemgr manages the struct and array types of a JVM to
// WebAssembly GC compilation and the runtime metadata used for virtual
// dispatch and instanceof checks.
//
// # Lifecycle
//
// A Registry is owned by one compilation session. While method bodies are
// scanned it is Open: StructOf and ArrayOf create descriptors on first
// reference, and MarkFieldUsed records which instance fields compiled code
// reads or writes. Finalize freezes the registry, resolves every struct
// against its class hierarchy and hands it to the target TypeWriter. Any
// type first requested after that fails with a late registration error.
//
//	reg := typemgr.New(typemgr.DefaultOptions())
//	_, _ = reg.StructOf("com/example/Animal")
//	_ = reg.MarkFieldUsed("com/example/Animal", "name")
//	...
//	if err := reg.Finalize(writer, functions, loader); err != nil {
//	    return err
//	}
//	blob, err := reg.WriteMetadata(functions)
//
// # Layout
//
// A resolved struct lists its fields from the root ancestor downward; the
// root contributes the synthetic ".vtable" i32 field, so every subclass
// layout extends its ancestors' layouts. Virtual methods keep the slot of
// the method they override. Methods never invoked and fields never used
// are left out.
//
// # Metadata
//
// Every struct owns a record in a shared blob placed in linear memory:
//
//	[0] offset of the interface call table (currently equal to [1])
//	[1] offset of the instanceof list
//	    function id per vtable slot
//	    instanceof count
//	    class index per instanceof entry, most derived first
//
// All words are little-endian int32 and offsets are relative to the record.
// The object's ".vtable" field holds the record's absolute address; the
// shared callVirtual helper adds the scaled slot index and loads the
// function id.
package typemgr
