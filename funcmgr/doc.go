// Package funcmgr tracks which methods must be emitted, the vtable slot each
// virtual method was assigned, and the global function id each emitted
// method receives.
//
// A compiler front end marks every invoked method as needed while scanning
// method bodies. During type finalization the layout manager asks whether a
// method is needed, marks overriding methods as needed, and records the
// vtable index of every virtual method. The metadata encoder finally turns
// each vtable entry into a function id.
package funcmgr
