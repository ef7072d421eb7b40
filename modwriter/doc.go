// Package modwriter turns a finalized type registry into a WebAssembly GC
// module.
//
// Writer implements typemgr.TypeWriter and typemgr.ArrayTypeWriter. Each
// class becomes a non-final struct subtype of its nearest registered
// ancestor; field layouts are prefix-compatible, so the subtype check holds.
// The metadata blob lands in linear memory at address 0 and the shared
// callVirtual helper is emitted and exported.
//
//	reg := typemgr.New(typemgr.DefaultOptions())
//	reg.CallVirtual() // registers java/lang/Object first
//	... register classes, mark fields and methods ...
//	out, err := modwriter.Build(reg, functions, loader, modwriter.DefaultOptions())
//	os.WriteFile("classes.wasm", out.Binary, 0o644)
//
// JVM field descriptors map to storage types as follows:
//
//	I      i32
//	J      i64
//	F      f32
//	D      f64
//	Z B    i8 (packed)
//	C S    i16 (packed)
//	L...;  (ref null struct)
//	[...   (ref null array)
package modwriter
