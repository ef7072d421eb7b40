package wasm_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/wippyai/wasm-classlayout/wasm"
)

func i32Field(mutable bool) wasm.FieldType {
	return wasm.FieldType{Type: wasm.StorageType{Kind: wasm.StorageKindVal, ValType: wasm.ValI32}, Mutable: mutable}
}

func structSub(parents []uint32, fields ...wasm.FieldType) wasm.TypeDef {
	return wasm.TypeDef{
		Kind: wasm.TypeDefKindSub,
		Sub: &wasm.SubType{
			Parents:  parents,
			CompType: wasm.CompType{Kind: wasm.CompKindStruct, Struct: &wasm.StructType{Fields: fields}},
		},
	}
}

func sampleModule() *wasm.Module {
	m := &wasm.Module{}
	root := m.AddTypeDef(structSub(nil, i32Field(false)))
	m.AddTypeDef(structSub([]uint32{root}, i32Field(false),
		wasm.FieldType{Type: wasm.StorageType{Kind: wasm.StorageKindPacked, Packed: wasm.PackedI16}, Mutable: true}))
	m.AddTypeDef(wasm.TypeDef{
		Kind: wasm.TypeDefKindSub,
		Sub: &wasm.SubType{Final: true, CompType: wasm.CompType{
			Kind:  wasm.CompKindArray,
			Array: &wasm.ArrayType{Element: wasm.FieldType{Type: wasm.StorageType{Kind: wasm.StorageKindRef, RefType: wasm.RefType{Nullable: true, HeapType: int64(root)}}, Mutable: true}},
		}},
	})
	sig := m.AddFuncType(wasm.FuncType{
		Params:  []wasm.ExtValType{wasm.Ref(wasm.RefType{Nullable: true, HeapType: int64(root)}), wasm.Val(wasm.ValI32)},
		Results: []wasm.ExtValType{wasm.Val(wasm.ValI32)},
	})
	maxPages := uint64(4)
	m.Funcs = []uint32{sig}
	m.Memories = []wasm.MemoryType{{Limits: wasm.Limits{Min: 1, Max: &maxPages}}}
	m.Exports = []wasm.Export{
		{Name: "callVirtual", Kind: wasm.KindFunc, Idx: 0},
		{Name: "memory", Kind: wasm.KindMemory, Idx: 0},
	}
	m.Code = []wasm.FuncBody{{
		Locals: []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI32}},
		Code:   wasm.NewCode().LocalGet(0).StructGet(root, 0).LocalGet(1).Op(wasm.OpI32Add).I32Load(0, 2).End().Bytes(),
	}}
	m.Data = []wasm.DataSegment{{Offset: 0, Init: []byte{8, 0, 0, 0, 8, 0, 0, 0}}}
	m.CustomSections = []wasm.CustomSection{{Name: "classlayout", Data: []byte("Dog")}}
	return m
}

func TestParseModuleRoundTrip(t *testing.T) {
	orig := sampleModule()
	data := orig.Encode()

	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatalf("ParseModule: %v", err)
	}

	types := m.SubTypes()
	if len(types) != 4 {
		t.Fatalf("types = %d, want 4", len(types))
	}
	if types[0].Final || len(types[0].Parents) != 0 {
		t.Errorf("root type = %+v", types[0])
	}
	if len(types[1].Parents) != 1 || types[1].Parents[0] != 0 {
		t.Errorf("child parents = %v", types[1].Parents)
	}
	if f := types[1].CompType.Struct.Fields[1]; f.Type.Kind != wasm.StorageKindPacked || f.Type.Packed != wasm.PackedI16 || !f.Mutable {
		t.Errorf("packed field = %+v", f)
	}
	if el := types[2].CompType.Array.Element; el.Type.RefType.HeapType != 0 || !el.Type.RefType.Nullable {
		t.Errorf("array element = %+v", el)
	}
	if !types[2].Final {
		t.Error("array type lost final")
	}
	if p := types[3].CompType.Func.Params; len(p) != 2 || p[0].Kind != wasm.ExtValKindRef {
		t.Errorf("func params = %+v", p)
	}

	if m.Memories[0].Limits.Max == nil || *m.Memories[0].Limits.Max != 4 {
		t.Errorf("memory limits = %+v", m.Memories[0].Limits)
	}
	if len(m.Exports) != 2 || m.Exports[1].Name != "memory" || m.Exports[1].Kind != wasm.KindMemory {
		t.Errorf("exports = %+v", m.Exports)
	}
	if !bytes.Equal(m.Code[0].Code, orig.Code[0].Code) || m.Code[0].Locals[0].Count != 2 {
		t.Errorf("code = %+v", m.Code[0])
	}
	if !bytes.Equal(m.Data[0].Init, orig.Data[0].Init) {
		t.Errorf("data = %x", m.Data[0].Init)
	}
	if len(m.CustomSections) != 1 || string(m.CustomSections[0].Data) != "Dog" {
		t.Errorf("custom sections = %+v", m.CustomSections)
	}

	if !bytes.Equal(m.Encode(), data) {
		t.Error("re-encoding the parsed module changed the bytes")
	}
}

func TestParseModuleRecGroup(t *testing.T) {
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
		wasm.SectionType, 0x0C,
		0x01,                         // 1 entry
		0x4E, 0x02,                   // rec of 2
		0x5F, 0x01, 0x7F, 0x00,       // struct (field i32)
		0x50, 0x01, 0x00, 0x5F, 0x00, // sub (0) struct
	}
	m, err := wasm.ParseModule(data)
	if err != nil {
		t.Fatal(err)
	}
	if m.NumTypes() != 2 {
		t.Errorf("NumTypes = %d, want 2", m.NumTypes())
	}
	types := m.SubTypes()
	if !types[0].Final || types[1].Final {
		t.Errorf("finality = %v, %v", types[0].Final, types[1].Final)
	}
}

func TestParseModuleErrors(t *testing.T) {
	valid := sampleModule().Encode()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", []byte{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00}, wasm.ErrInvalidMagic},
		{"bad version", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, wasm.ErrInvalidVersion},
		{"short header", []byte{0x00, 0x61}, nil},
		{"truncated", valid[:len(valid)-3], nil},
		{"unsupported section", append(append([]byte{}, valid[:8]...), 0x02, 0x01, 0x00), nil},
		{"out of order", append(append([]byte{}, valid...), wasm.SectionType, 0x01, 0x00), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wasm.ParseModule(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
