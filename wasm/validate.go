package wasm

import "fmt"

// MaxMemoryPages is the page limit of a 32-bit linear memory.
const MaxMemoryPages = 65536

// Validate checks the module for structural validity: index bounds, GC
// subtyping between struct types, export names and data placement.
func (m *Module) Validate() error {
	types := m.SubTypes()
	if err := validateSubTypes(types); err != nil {
		return err
	}
	if err := m.validateFunctions(types); err != nil {
		return err
	}
	if err := m.validateMemories(); err != nil {
		return err
	}
	if err := m.validateExports(); err != nil {
		return err
	}
	return m.validateData()
}

// ParseModuleValidate parses a WebAssembly binary and validates it.
func ParseModuleValidate(data []byte) (*Module, error) {
	m, err := ParseModule(data)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// SubTypes returns every type in the flat type index space. Shorthand
// function types are reported as final subtypes without parents.
func (m *Module) SubTypes() []SubType {
	out := make([]SubType, 0, len(m.TypeDefs))
	for i := range m.TypeDefs {
		td := &m.TypeDefs[i]
		switch td.Kind {
		case TypeDefKindFunc:
			out = append(out, SubType{Final: true, CompType: CompType{Kind: CompKindFunc, Func: td.Func}})
		case TypeDefKindSub:
			out = append(out, *td.Sub)
		case TypeDefKindRec:
			out = append(out, td.Rec.Types...)
		}
	}
	return out
}

func validateSubTypes(types []SubType) error {
	for i, sub := range types {
		if err := validateHeapTypes(types, i, sub.CompType); err != nil {
			return err
		}
		if len(sub.Parents) > 1 {
			return fmt.Errorf("type %d declares %d supertypes", i, len(sub.Parents))
		}
		for _, p := range sub.Parents {
			if int(p) >= i {
				return fmt.Errorf("type %d references supertype %d declared after it", i, p)
			}
			parent := types[p]
			if parent.Final {
				return fmt.Errorf("type %d extends final type %d", i, p)
			}
			if err := checkSubtype(sub.CompType, parent.CompType); err != nil {
				return fmt.Errorf("type %d is not a subtype of %d: %w", i, p, err)
			}
		}
	}
	return nil
}

func validateHeapTypes(types []SubType, idx int, ct CompType) error {
	check := func(rt RefType) error {
		if rt.HeapType >= 0 && rt.HeapType >= int64(len(types)) {
			return fmt.Errorf("type %d references invalid type index %d", idx, rt.HeapType)
		}
		return nil
	}
	switch ct.Kind {
	case CompKindStruct:
		for _, f := range ct.Struct.Fields {
			if f.Type.Kind == StorageKindRef {
				if err := check(f.Type.RefType); err != nil {
					return err
				}
			}
		}
	case CompKindArray:
		if ct.Array.Element.Type.Kind == StorageKindRef {
			return check(ct.Array.Element.Type.RefType)
		}
	case CompKindFunc:
		for _, vt := range append(append([]ExtValType(nil), ct.Func.Params...), ct.Func.Results...) {
			if vt.Kind == ExtValKindRef {
				if err := check(vt.RefType); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkSubtype requires the child struct to extend the parent's fields.
// Field types must match exactly, which is stricter than the GC rules for
// immutable fields.
func checkSubtype(child, parent CompType) error {
	if child.Kind != parent.Kind {
		return fmt.Errorf("kind 0x%02x differs from 0x%02x", child.Kind, parent.Kind)
	}
	switch child.Kind {
	case CompKindStruct:
		if len(child.Struct.Fields) < len(parent.Struct.Fields) {
			return fmt.Errorf("%d fields, supertype has %d", len(child.Struct.Fields), len(parent.Struct.Fields))
		}
		for i, f := range parent.Struct.Fields {
			if child.Struct.Fields[i] != f {
				return fmt.Errorf("field %d differs", i)
			}
		}
	case CompKindArray:
		if *child.Array != *parent.Array {
			return fmt.Errorf("element type differs")
		}
	case CompKindFunc:
		return fmt.Errorf("function subtyping not supported")
	}
	return nil
}

func (m *Module) validateFunctions(types []SubType) error {
	for i, typeIdx := range m.Funcs {
		if int(typeIdx) >= len(types) {
			return fmt.Errorf("function %d references invalid type index %d (max %d)", i, typeIdx, len(types)-1)
		}
		if types[typeIdx].CompType.Kind != CompKindFunc {
			return fmt.Errorf("function %d references non-function type %d", i, typeIdx)
		}
	}
	if len(m.Code) != len(m.Funcs) {
		return fmt.Errorf("code count %d does not match function count %d", len(m.Code), len(m.Funcs))
	}
	for i, body := range m.Code {
		if len(body.Code) == 0 || body.Code[len(body.Code)-1] != OpEnd {
			return fmt.Errorf("function %d body is not terminated by end", i)
		}
	}
	return nil
}

func (m *Module) validateMemories() error {
	if len(m.Memories) > 1 {
		return fmt.Errorf("module declares %d memories", len(m.Memories))
	}
	for i, mem := range m.Memories {
		if mem.Limits.Min > MaxMemoryPages {
			return fmt.Errorf("memory %d minimum %d exceeds %d pages", i, mem.Limits.Min, MaxMemoryPages)
		}
		if mem.Limits.Max != nil {
			if *mem.Limits.Max > MaxMemoryPages {
				return fmt.Errorf("memory %d maximum %d exceeds %d pages", i, *mem.Limits.Max, MaxMemoryPages)
			}
			if *mem.Limits.Max < mem.Limits.Min {
				return fmt.Errorf("memory %d maximum %d is less than minimum %d", i, *mem.Limits.Max, mem.Limits.Min)
			}
		}
	}
	return nil
}

func (m *Module) validateExports() error {
	seen := make(map[string]bool, len(m.Exports))
	for i, exp := range m.Exports {
		if seen[exp.Name] {
			return fmt.Errorf("duplicate export name %q", exp.Name)
		}
		seen[exp.Name] = true

		switch exp.Kind {
		case KindFunc:
			if int(exp.Idx) >= len(m.Funcs) {
				return fmt.Errorf("export %d (%s) references invalid function index %d", i, exp.Name, exp.Idx)
			}
		case KindMemory:
			if int(exp.Idx) >= len(m.Memories) {
				return fmt.Errorf("export %d (%s) references invalid memory index %d", i, exp.Name, exp.Idx)
			}
		default:
			return fmt.Errorf("export %d (%s) has unsupported kind 0x%02x", i, exp.Name, exp.Kind)
		}
	}
	return nil
}

func (m *Module) validateData() error {
	if len(m.Data) == 0 {
		return nil
	}
	if len(m.Memories) == 0 {
		return fmt.Errorf("data segments require a memory")
	}
	size := m.Memories[0].Limits.Min * MemoryPageSize
	for i, d := range m.Data {
		if end := uint64(d.Offset) + uint64(len(d.Init)); end > size {
			return fmt.Errorf("data segment %d ends at %d, beyond initial memory size %d", i, end, size)
		}
	}
	return nil
}
