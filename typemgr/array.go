package typemgr

// AnyType is a storage type that can be an array component.
type AnyType interface {
	// TypeKey returns a string unique to the type; array descriptors are
	// keyed by it. Primitives use their wasm names ("i32", "i8"), structs
	// their JVM descriptor ("LDog;") and arrays "[" plus the component key.
	TypeKey() string
	String() string
}

// ValueType is a primitive storage type.
type ValueType byte

const (
	ValueI32 ValueType = iota + 1
	ValueI64
	ValueF32
	ValueF64
	ValueI8
	ValueI16
)

var valueTypeNames = map[ValueType]string{
	ValueI32: "i32",
	ValueI64: "i64",
	ValueF32: "f32",
	ValueF64: "f64",
	ValueI8:  "i8",
	ValueI16: "i16",
}

// TypeKey returns the wasm name of the type.
func (v ValueType) TypeKey() string { return v.String() }

func (v ValueType) String() string {
	if s, ok := valueTypeNames[v]; ok {
		return s
	}
	return "unknown"
}

// Packed reports whether the type only exists as a packed field or element.
func (v ValueType) Packed() bool {
	return v == ValueI8 || v == ValueI16
}

// ValueTypeOf maps a primitive JVM descriptor character to its storage type.
func ValueTypeOf(desc byte) (ValueType, bool) {
	switch desc {
	case 'I':
		return ValueI32, true
	case 'J':
		return ValueI64, true
	case 'F':
		return ValueF32, true
	case 'D':
		return ValueF64, true
	case 'Z', 'B':
		return ValueI8, true
	case 'C', 'S':
		return ValueI16, true
	}
	return 0, false
}

// ArrayType describes the GC array type for one component type.
type ArrayType struct {
	component AnyType
	code      int
}

// Component returns the element type.
func (a *ArrayType) Component() AnyType { return a.component }

// Code returns the type code assigned by the writer, or UndefinedCode.
func (a *ArrayType) Code() int { return a.code }

// TypeKey identifies the array as a component of a nested array.
func (a *ArrayType) TypeKey() string { return "[" + a.component.TypeKey() }

// String renders "$array_" plus the component key, e.g. "$array_i32".
func (a *ArrayType) String() string { return "$array_" + a.component.TypeKey() }

// isNilType reports a nil component, including typed nil pointers.
func isNilType(t AnyType) bool {
	switch v := t.(type) {
	case nil:
		return true
	case *StructType:
		return v == nil
	case *ArrayType:
		return v == nil
	}
	return false
}
