package modwriter

import (
	"github.com/wippyai/wasm-classlayout/classfile"
	"github.com/wippyai/wasm-classlayout/typemgr"
	"github.com/wippyai/wasm-classlayout/wasm"
)

// Output is the result of Build.
type Output struct {
	Module      *wasm.Module
	Metadata    *typemgr.MetadataBlob
	Binary      []byte
	CallVirtual uint32 // function index of the dispatch helper
}

// Build finalizes reg into a new writer, serializes the metadata and
// encodes the module. The root class should be registered before any
// other struct, for example by calling reg.CallVirtual first, so every
// struct can name its supertype.
func Build(reg *typemgr.Registry, functions typemgr.FunctionManager, loader classfile.Loader, opts Options) (*Output, error) {
	thunk, err := reg.CallVirtual()
	if err != nil {
		return nil, err
	}

	w := New(opts)
	if err := reg.Finalize(w, functions, loader); err != nil {
		return nil, err
	}
	blob, err := reg.WriteMetadata(functions)
	if err != nil {
		return nil, err
	}
	if err := w.AddMetadata(blob.Bytes()); err != nil {
		return nil, err
	}
	fn, err := w.AddCallVirtual(thunk)
	if err != nil {
		return nil, err
	}
	bin, err := w.Encode()
	if err != nil {
		return nil, err
	}
	return &Output{
		Module:      w.Module(),
		Metadata:    blob,
		Binary:      bin,
		CallVirtual: fn,
	}, nil
}
