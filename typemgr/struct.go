package typemgr

import (
	"math"
	"sort"

	"github.com/wippyai/wasm-classlayout/classfile"
)

// UndefinedCode is the type code of a type the writer has not seen yet.
const UndefinedCode = math.MaxInt32

// NamedField is one entry of a resolved struct layout.
type NamedField struct {
	Owner      string // declaring class
	Name       string
	Descriptor string // JVM field descriptor
}

// IsVTable reports whether f is the synthetic vtable pointer.
func (f NamedField) IsVTable() bool {
	return f.Name == VTableFieldName
}

func vtableField(owner string) NamedField {
	return NamedField{Owner: owner, Name: VTableFieldName, Descriptor: "I"}
}

// StructType describes the GC struct of one class.
//
// The resolved parts (fields, methods, instanceofs) are empty until the
// registry is finalized.
type StructType struct {
	name         string
	classIndex   int
	code         int
	needed       map[string]struct{}
	fields       []NamedField
	methods      []classfile.MethodRef
	instanceOfs  []*StructType
	vtableOffset int
	resolved     bool
	serialized   bool
}

func newStructType(name string, classIndex int) *StructType {
	return &StructType{
		name:         name,
		classIndex:   classIndex,
		code:         UndefinedCode,
		needed:       make(map[string]struct{}),
		vtableOffset: -1,
	}
}

// Name returns the class name.
func (t *StructType) Name() string { return t.name }

// ClassIndex returns the registration ordinal, used as the runtime type tag.
func (t *StructType) ClassIndex() int { return t.classIndex }

// Code returns the type code assigned by the writer, or UndefinedCode.
func (t *StructType) Code() int { return t.code }

// Resolved reports whether the layout has been computed.
func (t *StructType) Resolved() bool { return t.resolved }

// NeededFields returns the names marked used on this struct, sorted.
func (t *StructType) NeededFields() []string {
	names := make([]string, 0, len(t.needed))
	for n := range t.needed {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Fields returns the resolved layout, root ancestor first.
func (t *StructType) Fields() []NamedField {
	return append([]NamedField(nil), t.fields...)
}

// FieldIndex returns the position of the named field, searching from the
// most derived declaration, or -1.
func (t *StructType) FieldIndex(name string) int {
	for i := len(t.fields) - 1; i >= 0; i-- {
		if t.fields[i].Name == name {
			return i
		}
	}
	return -1
}

// Methods returns the vtable in slot order.
func (t *StructType) Methods() []classfile.MethodRef {
	return append([]classfile.MethodRef(nil), t.methods...)
}

// InstanceOfs returns the structs an instance of t is an instance of,
// t itself first.
func (t *StructType) InstanceOfs() []*StructType {
	return append([]*StructType(nil), t.instanceOfs...)
}

// Parent returns the nearest registered ancestor, or nil.
func (t *StructType) Parent() *StructType {
	if len(t.instanceOfs) < 2 {
		return nil
	}
	return t.instanceOfs[1]
}

// VTableOffset returns the byte offset of the metadata record in the
// blob, or -1 if the struct has not been serialized.
func (t *StructType) VTableOffset() int { return t.vtableOffset }

// TypeKey identifies the struct as an array component.
func (t *StructType) TypeKey() string { return "L" + t.name + ";" }

func (t *StructType) String() string { return "$" + t.name }
