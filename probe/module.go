package probe

import (
	"github.com/wippyai/wasm-classlayout/errors"
	"github.com/wippyai/wasm-classlayout/wasm"
)

// Export names of the probe module.
const (
	LookupExport     = "lookup"
	InstanceOfExport = "instanceOf"
	MemoryExport     = "memory"
)

// Module encodes the probe module for a blob.
func Module(blob []byte) ([]byte, error) {
	pages := (uint64(len(blob)) + wasm.MemoryPageSize - 1) / wasm.MemoryPageSize
	if pages == 0 {
		pages = 1
	}
	if pages > wasm.MaxMemoryPages {
		return nil, errors.OutOfBounds(errors.PhaseProbe, []string{"memory"}, int(pages), wasm.MaxMemoryPages)
	}

	m := &wasm.Module{}
	sig := m.AddFuncType(wasm.FuncType{
		Params:  []wasm.ExtValType{wasm.Val(wasm.ValI32), wasm.Val(wasm.ValI32)},
		Results: []wasm.ExtValType{wasm.Val(wasm.ValI32)},
	})
	m.Funcs = []uint32{sig, sig}
	m.Memories = []wasm.MemoryType{{Limits: wasm.Limits{Min: pages}}}
	m.Exports = []wasm.Export{
		{Name: LookupExport, Kind: wasm.KindFunc, Idx: 0},
		{Name: InstanceOfExport, Kind: wasm.KindFunc, Idx: 1},
		{Name: MemoryExport, Kind: wasm.KindMemory, Idx: 0},
	}
	m.Code = []wasm.FuncBody{lookupBody(), instanceOfBody()}
	if len(blob) > 0 {
		m.Data = []wasm.DataSegment{{Offset: 0, Init: blob}}
	}

	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(errors.PhaseProbe, errors.KindInvalidData, err, "validate probe module")
	}
	return m.Encode(), nil
}

func lookupBody() wasm.FuncBody {
	code := wasm.NewCode().
		LocalGet(0).
		LocalGet(1).
		Op(wasm.OpI32Add).
		I32Load(0, 2).
		End()
	return wasm.FuncBody{Code: code.Bytes()}
}

// instanceOfBody scans the list whose offset is the record's second word.
// Local 2 walks the list, local 3 counts down the remaining entries.
func instanceOfBody() wasm.FuncBody {
	code := wasm.NewCode().
		LocalGet(0).
		LocalGet(0).
		I32Load(4, 2).
		Op(wasm.OpI32Add).
		LocalSet(2).
		LocalGet(2).
		I32Load(0, 2).
		LocalSet(3).
		Block().
		Loop().
		LocalGet(3).
		Op(wasm.OpI32Eqz).
		BrIf(1).
		LocalGet(2).
		I32Const(4).
		Op(wasm.OpI32Add).
		LocalTee(2).
		I32Load(0, 2).
		LocalGet(1).
		Op(wasm.OpI32Eq).
		If().
		I32Const(1).
		Op(wasm.OpReturn).
		End().
		LocalGet(3).
		I32Const(1).
		Op(wasm.OpI32Sub).
		LocalSet(3).
		Br(0).
		End().
		End().
		I32Const(0).
		End()
	return wasm.FuncBody{
		Locals: []wasm.LocalEntry{{Count: 2, ValType: wasm.ValI32}},
		Code:   code.Bytes(),
	}
}
