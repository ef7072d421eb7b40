// Package classlayout lays out JVM-style classes as WebAssembly GC structs.
//
// A compiler front end registers every class it meets, marks the fields
// its method bodies touch and the methods they invoke. Once scanning is
// done the registry is frozen and each class is resolved into a struct
// type whose fields and virtual methods extend its superclass's as a
// prefix. Virtual dispatch and instanceof run against a metadata blob in
// linear memory that records, per class, the function ids of its vtable
// and the class indexes it is an instance of.
//
// # Architecture Overview
//
//	classlayout/
//	├── classfile/      Class metadata, loaders and the JSON hierarchy format
//	├── funcmgr/        Needed-method bookkeeping and function ids
//	├── typemgr/        Type registry, layout resolution, metadata blob, callVirtual
//	├── modwriter/      Emits resolved types into a wasm module
//	├── wasm/           Core wasm module model: encode, decode, validate
//	├── probe/          Replays dispatch and instanceof in wazero
//	├── errors/         Structured error types
//	└── cmd/classlayout Command line driver with an interactive browser
//
// # Quick Start
//
//	reg := typemgr.New(typemgr.DefaultOptions())
//	fm := funcmgr.New()
//
//	// The root class goes first so every struct gets its wasm supertype.
//	reg.CallVirtual()
//	reg.StructOf("Animal")
//	reg.MarkFieldUsed("Animal", "name")
//	fm.MarkNeeded(classfile.MethodRef{Class: "Animal", Name: "speak", Signature: "()V"})
//
//	out, err := modwriter.Build(reg, fm, loader, modwriter.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("classes.wasm", out.Binary, 0o644)
//
// # Metadata Layout
//
// Each class record is a run of little-endian i32 words:
//
//	[tableEnd, tableEnd, fn_0 .. fn_k-1, m, class_0 .. class_m-1]
//
// tableEnd is the byte offset of m from the start of the record. The
// struct's vtable field holds the record's offset in the blob, and
// callVirtual loads the function id at vtable + index*4.
//
// # Error Handling
//
// All packages report *errors.Error values carrying the phase, kind and
// class involved:
//
//	if errors.Is(err, errors.ErrMissingClass) {
//	    // a superclass could not be loaded
//	}
//
// # Logging
//
// Each package exposes SetLogger to install a *zap.Logger; the default
// logs nothing.
package classlayout
