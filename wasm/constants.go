package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// Section IDs written by the encoder, in the order they must appear.
const (
	SectionCustom   byte = 0  // Custom section (can appear anywhere)
	SectionType     byte = 1  // Type section (function and GC types)
	SectionFunction byte = 3  // Function section (type indices)
	SectionMemory   byte = 5  // Memory section
	SectionExport   byte = 7  // Export section
	SectionCode     byte = 10 // Code section (function bodies)
	SectionData     byte = 11 // Data section
)

// Export descriptor kinds.
const (
	KindFunc   byte = 0 // Function export
	KindMemory byte = 2 // Memory export
)

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32 ValType = 0x7F // 32-bit integer
	ValI64 ValType = 0x7E // 64-bit integer
	ValF32 ValType = 0x7D // 32-bit float
	ValF64 ValType = 0x7C // 64-bit float

	// GC proposal reference types
	ValRefNull   ValType = 0x63 // (ref null ht) - nullable reference with heap type
	ValRef       ValType = 0x64 // (ref ht) - non-nullable reference with heap type
	ValEqRef     ValType = 0x6D // eqref - equality-comparable reference
	ValStructRef ValType = 0x6B // structref - struct reference
	ValArrayRef  ValType = 0x6A // arrayref - array reference
	ValAnyRef    ValType = 0x6E // anyref - any internal reference
)

// BlockTypeEmpty is the block type byte of a block without results.
const BlockTypeEmpty byte = 0x40

// Control flow opcodes
const (
	OpBlock  byte = 0x02
	OpLoop   byte = 0x03
	OpIf     byte = 0x04
	OpEnd    byte = 0x0B
	OpBr     byte = 0x0C
	OpBrIf   byte = 0x0D
	OpReturn byte = 0x0F
)

// Variable opcodes
const (
	OpLocalGet byte = 0x20
	OpLocalSet byte = 0x21
	OpLocalTee byte = 0x22
)

// Memory and numeric opcodes
const (
	OpI32Load  byte = 0x28
	OpI32Const byte = 0x41
	OpI32Eqz   byte = 0x45
	OpI32Eq    byte = 0x46
	OpI32Add   byte = 0x6A
	OpI32Sub   byte = 0x6B
)

// OpPrefixGC introduces the GC proposal instructions (struct, array, ref).
const OpPrefixGC byte = 0xFB

// GC opcodes (0xFB prefix) used for object field access.
const (
	GCStructNew     uint32 = 0x00
	GCStructGet     uint32 = 0x02
	GCStructSet     uint32 = 0x05
	GCArrayNew      uint32 = 0x06
	GCArrayGet      uint32 = 0x0B
	GCArraySet      uint32 = 0x0E
	GCArrayLen      uint32 = 0x0F
	GCRefTest       uint32 = 0x14
	GCRefCastNull   uint32 = 0x17
	GCStructGetS    uint32 = 0x03
	GCStructGetU    uint32 = 0x04
	GCArrayNewFixed uint32 = 0x08
)

// Abstract heap types (encoded as negative s33 values)
const (
	HeapTypeAny    int64 = -18 // 0x6E - any reference
	HeapTypeEq     int64 = -19 // 0x6D - eq reference
	HeapTypeStruct int64 = -21 // 0x6B - struct reference
	HeapTypeArray  int64 = -22 // 0x6A - array reference
)

// Limits flags
const (
	LimitsNoMax  byte = 0x00
	LimitsHasMax byte = 0x01
)

// MemoryPageSize is the size of one linear memory page.
const MemoryPageSize = 65536

// Type section encodings
const (
	FuncTypeByte   byte = 0x60 // func
	StructTypeByte byte = 0x5F // struct (GC)
	ArrayTypeByte  byte = 0x5E // array (GC)
	RecTypeByte    byte = 0x4E // rec (GC recursive types)
	SubTypeByte    byte = 0x50 // sub (GC subtyping)
	SubFinalByte   byte = 0x4F // sub final (GC subtyping, no further subtypes)
)

// Packed storage types for struct fields
const (
	PackedI8  byte = 0x78 // i8
	PackedI16 byte = 0x77 // i16
)
