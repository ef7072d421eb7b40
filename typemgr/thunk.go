package typemgr

import (
	"strings"

	"github.com/wippyai/wasm-classlayout/wasm"
)

// CallVirtualName is the name of the shared dispatch helper.
const CallVirtualName = "callVirtual"

// SyntheticFunction is a helper function the compiler emits once per module.
type SyntheticFunction struct {
	object *StructType
	name   string
	code   string
}

// Name returns the function name.
func (f *SyntheticFunction) Name() string { return f.name }

// Object returns the struct whose vtable field the helper reads.
func (f *SyntheticFunction) Object() *StructType { return f.object }

// Code returns the instruction sequence in text form.
func (f *SyntheticFunction) Code() string { return f.code }

// Text returns the complete function in text form.
func (f *SyntheticFunction) Text() string {
	var sb strings.Builder
	sb.WriteString("(func $")
	sb.WriteString(f.name)
	sb.WriteString(" (param (ref null ")
	sb.WriteString(f.object.String())
	sb.WriteString(")) (param i32) (result i32)\n")
	for _, line := range strings.Split(f.code, "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(")")
	return sb.String()
}

// Signature returns the function type for the object struct's type index.
func (f *SyntheticFunction) Signature(objectTypeIdx uint32) wasm.FuncType {
	return wasm.FuncType{
		Params: []wasm.ExtValType{
			wasm.Ref(wasm.RefType{Nullable: true, HeapType: int64(objectTypeIdx)}),
			wasm.Val(wasm.ValI32),
		},
		Results: []wasm.ExtValType{wasm.Val(wasm.ValI32)},
	}
}

// Body returns the binary function body. The vtable field is field 0 of
// the object struct.
func (f *SyntheticFunction) Body(objectTypeIdx uint32) wasm.FuncBody {
	code := wasm.NewCode().
		LocalGet(0).
		StructGet(objectTypeIdx, 0).
		LocalGet(1).
		Op(wasm.OpI32Add).
		I32Load(0, 2).
		Op(wasm.OpReturn).
		End()
	return wasm.FuncBody{Code: code.Bytes()}
}

// CallVirtual returns the helper that loads a function id from an object's
// metadata record. Its second parameter is the byte offset of the vtable
// slot, i.e. the function index times four.
//
// The helper is created on first call and shared afterwards; it registers
// the root class struct if needed.
func (r *Registry) CallVirtual() (*SyntheticFunction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.callVirtual != nil {
		return r.callVirtual, nil
	}
	object, err := r.structOf(r.rootClass)
	if err != nil {
		return nil, err
	}
	r.callVirtual = &SyntheticFunction{
		object: object,
		name:   CallVirtualName,
		code: strings.Join([]string{
			"local.get 0",
			"struct.get " + object.name + " " + VTableFieldName,
			"local.get 1",
			"i32.add",
			"i32.load offset=0 align=4",
			"return",
		}, "\n"),
	}
	return r.callVirtual, nil
}
