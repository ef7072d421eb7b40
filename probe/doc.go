// Package probe executes lookups against a metadata blob inside wazero.
//
// wazero does not run GC code, so the probe replays the linear memory part
// of virtual dispatch: a small module holds the blob at address 0 and
// exports
//
//	lookup(vtable i32, offset i32) i32       the load done by callVirtual
//	instanceOf(vtable i32, class i32) i32    scan of the instanceof list
//
// Verify walks every resolved struct and checks both against the registry.
package probe
