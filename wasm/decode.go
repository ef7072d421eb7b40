package wasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/wasm-classlayout/internal/binary"
)

// Parsing errors returned by ParseModule.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// ParseModule parses a module written by Encode. Sections the encoder never
// writes are rejected.
func ParseModule(data []byte) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := r.ReadU32LE()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}

	m := &Module{}
	var lastSectionID byte

	for {
		sectionID, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, r.WrapError("section header", err)
		}

		// The sections written here share the canonical order of their ids.
		if sectionID != SectionCustom {
			if sectionID <= lastSectionID {
				return nil, fmt.Errorf("section %d appears out of order", sectionID)
			}
			lastSectionID = sectionID
		}

		sectionSize, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("section size", err)
		}
		sectionData, err := r.ReadBytes(int(sectionSize))
		if err != nil {
			return nil, r.WrapError("section data", err)
		}
		sr := binary.NewReader(sectionData)

		switch sectionID {
		case SectionCustom:
			err = parseCustomSection(sr, m)
		case SectionType:
			err = parseTypeSection(sr, m)
		case SectionFunction:
			err = parseFunctionSection(sr, m)
		case SectionMemory:
			err = parseMemorySection(sr, m)
		case SectionExport:
			err = parseExportSection(sr, m)
		case SectionCode:
			err = parseCodeSection(sr, m)
		case SectionData:
			err = parseDataSection(sr, m)
		default:
			return nil, fmt.Errorf("unsupported section ID: 0x%02x", sectionID)
		}
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", sectionID, err)
		}
		if sr.Len() != 0 {
			return nil, fmt.Errorf("section %d: %d trailing bytes", sectionID, sr.Len())
		}
	}

	return m, nil
}

func parseCustomSection(r *binary.Reader, m *Module) error {
	name, err := r.ReadName()
	if err != nil {
		return err
	}
	rest, err := r.ReadRemaining()
	if err != nil {
		return err
	}
	m.CustomSections = append(m.CustomSections, CustomSection{Name: name, Data: rest})
	return nil
}

func parseTypeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.TypeDefs = make([]TypeDef, 0, count)

	for i := uint32(0); i < count; i++ {
		form, err := r.ReadByte()
		if err != nil {
			return err
		}

		switch form {
		case FuncTypeByte:
			ft, err := readFuncType(r)
			if err != nil {
				return err
			}
			m.TypeDefs = append(m.TypeDefs, TypeDef{Kind: TypeDefKindFunc, Func: &ft})

		case RecTypeByte:
			recCount, err := r.ReadU32()
			if err != nil {
				return err
			}
			rec := RecType{Types: make([]SubType, recCount)}
			for j := range rec.Types {
				form, err := r.ReadByte()
				if err != nil {
					return err
				}
				if rec.Types[j], err = readSubType(r, form); err != nil {
					return err
				}
			}
			m.TypeDefs = append(m.TypeDefs, TypeDef{Kind: TypeDefKindRec, Rec: &rec})

		case SubTypeByte, SubFinalByte, StructTypeByte, ArrayTypeByte:
			sub, err := readSubType(r, form)
			if err != nil {
				return err
			}
			m.TypeDefs = append(m.TypeDefs, TypeDef{Kind: TypeDefKindSub, Sub: &sub})

		default:
			return fmt.Errorf("unsupported type form 0x%02x", form)
		}
	}
	return nil
}

func readSubType(r *binary.Reader, form byte) (SubType, error) {
	sub := SubType{Final: true}

	if form == SubTypeByte || form == SubFinalByte {
		sub.Final = form == SubFinalByte
		parentCount, err := r.ReadU32()
		if err != nil {
			return SubType{}, err
		}
		sub.Parents = make([]uint32, parentCount)
		for i := range sub.Parents {
			if sub.Parents[i], err = r.ReadU32(); err != nil {
				return SubType{}, err
			}
		}
		if form, err = r.ReadByte(); err != nil {
			return SubType{}, err
		}
	}

	comp, err := readCompType(r, form)
	if err != nil {
		return SubType{}, err
	}
	sub.CompType = comp
	return sub, nil
}

func readCompType(r *binary.Reader, kind byte) (CompType, error) {
	switch kind {
	case FuncTypeByte:
		ft, err := readFuncType(r)
		if err != nil {
			return CompType{}, err
		}
		return CompType{Kind: CompKindFunc, Func: &ft}, nil

	case StructTypeByte:
		fieldCount, err := r.ReadU32()
		if err != nil {
			return CompType{}, err
		}
		st := StructType{Fields: make([]FieldType, fieldCount)}
		for i := range st.Fields {
			if st.Fields[i], err = readFieldType(r); err != nil {
				return CompType{}, err
			}
		}
		return CompType{Kind: CompKindStruct, Struct: &st}, nil

	case ArrayTypeByte:
		ft, err := readFieldType(r)
		if err != nil {
			return CompType{}, err
		}
		return CompType{Kind: CompKindArray, Array: &ArrayType{Element: ft}}, nil

	default:
		return CompType{}, fmt.Errorf("invalid composite type 0x%02x", kind)
	}
}

func readFuncType(r *binary.Reader) (FuncType, error) {
	params, err := readExtValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	results, err := readExtValTypes(r)
	if err != nil {
		return FuncType{}, err
	}
	return FuncType{Params: params, Results: results}, nil
}

func readExtValTypes(r *binary.Reader) ([]ExtValType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	types := make([]ExtValType, count)
	for i := range types {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == byte(ValRefNull) || b == byte(ValRef) {
			rt, err := readHeapType(r, b)
			if err != nil {
				return nil, err
			}
			types[i] = Ref(rt)
			continue
		}
		types[i] = Val(ValType(b))
	}
	return types, nil
}

func readHeapType(r *binary.Reader, prefix byte) (RefType, error) {
	heapType, err := r.ReadS64()
	if err != nil {
		return RefType{}, err
	}
	return RefType{Nullable: prefix == byte(ValRefNull), HeapType: heapType}, nil
}

func readFieldType(r *binary.Reader) (FieldType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return FieldType{}, err
	}

	var st StorageType
	switch b {
	case PackedI8, PackedI16:
		st = StorageType{Kind: StorageKindPacked, Packed: b}
	case byte(ValRefNull), byte(ValRef):
		rt, err := readHeapType(r, b)
		if err != nil {
			return FieldType{}, err
		}
		st = StorageType{Kind: StorageKindRef, RefType: rt}
	default:
		st = StorageType{Kind: StorageKindVal, ValType: ValType(b)}
	}

	mut, err := r.ReadByte()
	if err != nil {
		return FieldType{}, err
	}
	if mut > 1 {
		return FieldType{}, fmt.Errorf("invalid mutability 0x%02x", mut)
	}
	return FieldType{Type: st, Mutable: mut == 1}, nil
}

func parseFunctionSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Funcs = make([]uint32, count)
	for i := range m.Funcs {
		if m.Funcs[i], err = r.ReadU32(); err != nil {
			return err
		}
	}
	return nil
}

func parseMemorySection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Memories = make([]MemoryType, count)
	for i := range m.Memories {
		if m.Memories[i].Limits, err = readLimits(r); err != nil {
			return err
		}
	}
	return nil
}

func readLimits(r *binary.Reader) (Limits, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return Limits{}, err
	}
	if flags != LimitsNoMax && flags != LimitsHasMax {
		return Limits{}, fmt.Errorf("unsupported limits flags 0x%02x", flags)
	}
	minVal, err := r.ReadU32()
	if err != nil {
		return Limits{}, err
	}
	l := Limits{Min: uint64(minVal)}
	if flags == LimitsHasMax {
		maxVal, err := r.ReadU32()
		if err != nil {
			return Limits{}, err
		}
		max64 := uint64(maxVal)
		l.Max = &max64
	}
	return l, nil
}

func parseExportSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Exports = make([]Export, count)
	for i := range m.Exports {
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		if kind != KindFunc && kind != KindMemory {
			return fmt.Errorf("unsupported export kind: 0x%02x", kind)
		}
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		m.Exports[i] = Export{Name: name, Kind: kind, Idx: idx}
	}
	return nil
}

func parseCodeSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Code = make([]FuncBody, count)
	for i := range m.Code {
		bodySize, err := r.ReadU32()
		if err != nil {
			return err
		}
		bodyData, err := r.ReadBytes(int(bodySize))
		if err != nil {
			return err
		}
		br := binary.NewReader(bodyData)

		localCount, err := br.ReadU32()
		if err != nil {
			return err
		}
		var locals []LocalEntry
		for j := uint32(0); j < localCount; j++ {
			n, err := br.ReadU32()
			if err != nil {
				return err
			}
			t, err := br.ReadByte()
			if err != nil {
				return err
			}
			locals = append(locals, LocalEntry{Count: n, ValType: ValType(t)})
		}

		code, err := br.ReadRemaining()
		if err != nil {
			return err
		}
		m.Code[i] = FuncBody{Locals: locals, Code: code}
	}
	return nil
}

func parseDataSection(r *binary.Reader, m *Module) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	m.Data = make([]DataSegment, count)
	for i := range m.Data {
		flags, err := r.ReadU32()
		if err != nil {
			return err
		}
		if flags != 0 {
			return fmt.Errorf("unsupported data segment flags: %d", flags)
		}
		op, err := r.ReadByte()
		if err != nil {
			return err
		}
		if op != OpI32Const {
			return fmt.Errorf("unsupported data offset opcode 0x%02x", op)
		}
		offset, err := r.ReadS64()
		if err != nil {
			return err
		}
		if end, err := r.ReadByte(); err != nil || end != OpEnd {
			return fmt.Errorf("unterminated data offset expression")
		}
		initLen, err := r.ReadU32()
		if err != nil {
			return err
		}
		init, err := r.ReadBytes(int(initLen))
		if err != nil {
			return err
		}
		m.Data[i] = DataSegment{Offset: uint32(offset), Init: init}
	}
	return nil
}
