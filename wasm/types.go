package wasm

// Module is the subset of a WebAssembly module produced by the class layout
// writer: GC type definitions, function declarations, one linear memory for
// the type metadata blob, exports, code and data.
type Module struct {
	TypeDefs []TypeDef
	Funcs    []uint32 // Type indices for declared functions
	Memories []MemoryType
	Exports  []Export
	Code     []FuncBody
	Data     []DataSegment

	CustomSections []CustomSection
}

// FuncType represents a WebAssembly function signature with parameter and result types.
// Reference-typed params and results carry their heap type in RefType.
type FuncType struct {
	Params  []ExtValType
	Results []ExtValType
}

// ExtValType represents a value type that can include reference types
// with heap type information (for GC proposal support)
type ExtValType struct {
	Kind    byte    // ExtValKindSimple or ExtValKindRef
	ValType ValType // For simple types
	RefType RefType // For reference types (0x63, 0x64)
}

// Extended value type kinds
const (
	ExtValKindSimple byte = 0 // Simple valtype (single byte)
	ExtValKindRef    byte = 1 // Reference type with heap type
)

// Val wraps a simple value type.
func Val(v ValType) ExtValType {
	return ExtValType{Kind: ExtValKindSimple, ValType: v}
}

// Ref wraps a reference type.
func Ref(rt RefType) ExtValType {
	return ExtValType{Kind: ExtValKindRef, RefType: rt}
}

// FieldType represents a struct field with mutability and storage type
type FieldType struct {
	Type    StorageType
	Mutable bool
}

// StorageType represents a type that can be stored in a struct field or array.
type StorageType struct {
	Kind    byte // StorageKindVal, StorageKindPacked, StorageKindRef
	ValType ValType
	Packed  byte // PackedI8, PackedI16
	RefType RefType
}

// Storage type kind constants
const (
	StorageKindVal    byte = 0
	StorageKindPacked byte = 1
	StorageKindRef    byte = 2
)

// RefType represents a reference type with nullable flag and heap type
type RefType struct {
	Nullable bool
	HeapType int64 // Encoded as s33: negative for abstract types, positive for type indices
}

// StructType represents a GC struct type definition
type StructType struct {
	Fields []FieldType
}

// ArrayType represents a GC array type definition
type ArrayType struct {
	Element FieldType
}

// SubType represents a subtype definition wrapping a composite type
type SubType struct {
	CompType CompType
	Parents  []uint32
	Final    bool
}

// CompType is a composite type: func, struct, or array
type CompType struct {
	Func   *FuncType
	Struct *StructType
	Array  *ArrayType
	Kind   byte
}

// Composite type kinds
const (
	CompKindFunc   byte = FuncTypeByte   // 0x60
	CompKindStruct byte = StructTypeByte // 0x5F
	CompKindArray  byte = ArrayTypeByte  // 0x5E
)

// RecType represents a recursive type group
type RecType struct {
	Types []SubType
}

// TypeDef represents any type definition in the type section
type TypeDef struct {
	Func *FuncType
	Sub  *SubType
	Rec  *RecType
	Kind byte
}

// Type definition kinds
const (
	TypeDefKindFunc byte = 0 // Shorthand function type
	TypeDefKindSub  byte = 1 // Sub/SubFinal type
	TypeDefKindRec  byte = 2 // Recursive type group
)

// ValType represents a WebAssembly value type.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValAnyRef:
		return "anyref"
	case ValEqRef:
		return "eqref"
	case ValStructRef:
		return "structref"
	case ValArrayRef:
		return "arrayref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return "unknown"
	}
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for memories.
type Limits struct {
	Max *uint64
	Min uint64
}

// Export describes an exported item.
// Kind uses KindFunc or KindMemory.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// FuncBody represents a function's local declarations and bytecode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // Raw code bytes including end opcode
}

// LocalEntry represents a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment represents an active data segment in memory 0.
type DataSegment struct {
	Offset uint32 // i32.const offset of the segment
	Init   []byte
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumTypes returns the number of types in the flat type index space.
// Rec groups contribute one index per member.
func (m *Module) NumTypes() int {
	count := 0
	for i := range m.TypeDefs {
		switch m.TypeDefs[i].Kind {
		case TypeDefKindFunc, TypeDefKindSub:
			count++
		case TypeDefKindRec:
			count += len(m.TypeDefs[i].Rec.Types)
		}
	}
	return count
}

// AddTypeDef appends a type definition and returns the flat index of its
// first type.
func (m *Module) AddTypeDef(td TypeDef) uint32 {
	idx := uint32(m.NumTypes())
	m.TypeDefs = append(m.TypeDefs, td)
	return idx
}

// AddFuncType adds a function type and returns its index, reusing an
// existing shorthand function type if equal.
func (m *Module) AddFuncType(ft FuncType) uint32 {
	flat := uint32(0)
	for i := range m.TypeDefs {
		td := &m.TypeDefs[i]
		switch td.Kind {
		case TypeDefKindFunc:
			if funcTypesEqual(*td.Func, ft) {
				return flat
			}
			flat++
		case TypeDefKindSub:
			flat++
		case TypeDefKindRec:
			flat += uint32(len(td.Rec.Types))
		}
	}
	return m.AddTypeDef(TypeDef{Kind: TypeDefKindFunc, Func: &ft})
}

func funcTypesEqual(a, b FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if !extValTypesEqual(a.Params[i], b.Params[i]) {
			return false
		}
	}
	for i := range a.Results {
		if !extValTypesEqual(a.Results[i], b.Results[i]) {
			return false
		}
	}
	return true
}

func extValTypesEqual(a, b ExtValType) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == ExtValKindRef {
		return a.RefType.Nullable == b.RefType.Nullable && a.RefType.HeapType == b.RefType.HeapType
	}
	return a.ValType == b.ValType
}
