package modwriter

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/errors"
	"github.com/wippyai/wasm-classlayout/internal/binary"
	"github.com/wippyai/wasm-classlayout/typemgr"
	"github.com/wippyai/wasm-classlayout/wasm"
)

// Name section subsection ids.
const (
	nameSubsectionFunctions byte = 1
	nameSubsectionTypes     byte = 4
)

// Writer collects the types, metadata and helpers of one module.
type Writer struct {
	module    *wasm.Module
	log       *zap.Logger
	structs   map[string]uint32
	typeNames map[uint32]string
	funcNames map[uint32]string
	opts      Options
	metadata  bool
}

// New creates an empty writer.
func New(opts Options) *Writer {
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	return &Writer{
		module:    &wasm.Module{},
		log:       log,
		structs:   make(map[string]uint32),
		typeNames: make(map[uint32]string),
		funcNames: make(map[uint32]string),
		opts:      opts,
	}
}

// WriteStructType implements typemgr.TypeWriter.
func (w *Writer) WriteStructType(t *typemgr.StructType) (int, error) {
	layout := t.Fields()
	fields := make([]wasm.FieldType, 0, len(layout))
	for _, f := range layout {
		st, err := StorageOf(f.Descriptor)
		if err != nil {
			return 0, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
				Path(f.Owner, f.Name).
				Class(t.Name()).
				Cause(err).
				Detail("field %s.%s has descriptor %q", f.Owner, f.Name, f.Descriptor).
				Build()
		}
		fields = append(fields, wasm.FieldType{Type: st, Mutable: w.opts.MutableFields && !f.IsVTable()})
	}

	sub := &wasm.SubType{
		CompType: wasm.CompType{Kind: wasm.CompKindStruct, Struct: &wasm.StructType{Fields: fields}},
	}
	if p := t.Parent(); p != nil {
		if idx, ok := w.structs[p.Name()]; ok {
			sub.Parents = []uint32{idx}
		} else {
			w.log.Warn("supertype registered after subtype, emitting without parent",
				zap.String("type", t.Name()),
				zap.String("parent", p.Name()))
		}
	}

	idx := w.module.AddTypeDef(wasm.TypeDef{Kind: wasm.TypeDefKindSub, Sub: sub})
	w.structs[t.Name()] = idx
	w.typeNames[idx] = t.Name()
	w.log.Debug("struct type written",
		zap.String("type", t.Name()),
		zap.Uint32("index", idx),
		zap.Int("fields", len(fields)),
		zap.Int("parents", len(sub.Parents)))
	return int(idx), nil
}

// WriteArrayType implements typemgr.ArrayTypeWriter. Arrays of structs and
// of already written arrays use the concrete element type.
func (w *Writer) WriteArrayType(a *typemgr.ArrayType) (int, error) {
	var elem wasm.StorageType
	switch c := a.Component().(type) {
	case typemgr.ValueType:
		elem = storageOfValue(c)
	case *typemgr.StructType:
		elem = refStorage(wasm.HeapTypeStruct)
		if idx, ok := w.structs[c.Name()]; ok {
			elem.RefType.HeapType = int64(idx)
		}
	case *typemgr.ArrayType:
		elem = refStorage(wasm.HeapTypeArray)
		if c.Code() != typemgr.UndefinedCode {
			elem.RefType.HeapType = int64(c.Code())
		}
	default:
		return 0, errors.Unsupported(errors.PhaseEncode, "array component "+a.Component().String())
	}

	idx := w.module.AddTypeDef(wasm.TypeDef{
		Kind: wasm.TypeDefKindSub,
		Sub: &wasm.SubType{
			Final: true,
			CompType: wasm.CompType{
				Kind:  wasm.CompKindArray,
				Array: &wasm.ArrayType{Element: wasm.FieldType{Type: elem, Mutable: true}},
			},
		},
	})
	w.typeNames[idx] = strings.TrimPrefix(a.String(), "$")
	w.log.Debug("array type written", zap.String("type", a.String()), zap.Uint32("index", idx))
	return int(idx), nil
}

// TypeIndex returns the type index written for a class.
func (w *Writer) TypeIndex(className string) (uint32, bool) {
	idx, ok := w.structs[className]
	return idx, ok
}

// AddMetadata places the metadata blob at address 0 of a new memory large
// enough to hold it.
func (w *Writer) AddMetadata(blob []byte) error {
	if w.metadata {
		return errors.New(errors.PhaseEncode, errors.KindInvalidState).
			Detail("metadata memory already added").
			Build()
	}
	w.metadata = true

	pages := (uint64(len(blob)) + wasm.MemoryPageSize - 1) / wasm.MemoryPageSize
	if pages == 0 {
		pages = 1
	}
	if pages > wasm.MaxMemoryPages {
		return errors.OutOfBounds(errors.PhaseEncode, []string{"memory"}, int(pages), wasm.MaxMemoryPages)
	}
	w.module.Memories = append(w.module.Memories, wasm.MemoryType{Limits: wasm.Limits{Min: pages}})
	if len(blob) > 0 {
		w.module.Data = append(w.module.Data, wasm.DataSegment{Offset: 0, Init: blob})
	}
	if w.opts.MemoryExport != "" {
		w.module.Exports = append(w.module.Exports, wasm.Export{Name: w.opts.MemoryExport, Kind: wasm.KindMemory, Idx: 0})
	}
	w.log.Debug("metadata memory added", zap.Int("bytes", len(blob)), zap.Uint64("pages", pages))
	return nil
}

// AddCallVirtual emits and exports the dispatch helper and returns its
// function index. The helper's object struct must have been written.
func (w *Writer) AddCallVirtual(f *typemgr.SyntheticFunction) (uint32, error) {
	objectIdx, ok := w.structs[f.Object().Name()]
	if !ok {
		return 0, errors.NotFound(errors.PhaseEncode, "struct type", f.Object().Name())
	}

	typeIdx := w.module.AddFuncType(f.Signature(objectIdx))
	funcIdx := uint32(len(w.module.Funcs))
	w.module.Funcs = append(w.module.Funcs, typeIdx)
	w.module.Code = append(w.module.Code, f.Body(objectIdx))
	w.module.Exports = append(w.module.Exports, wasm.Export{Name: f.Name(), Kind: wasm.KindFunc, Idx: funcIdx})
	w.funcNames[funcIdx] = f.Name()
	return funcIdx, nil
}

// Module returns the assembled module, including the name section when
// enabled.
func (w *Writer) Module() *wasm.Module {
	m := *w.module
	if w.opts.NameSection && (len(w.funcNames) > 0 || len(w.typeNames) > 0) {
		m.CustomSections = append(append([]wasm.CustomSection(nil), m.CustomSections...),
			wasm.CustomSection{Name: "name", Data: w.nameSection()})
	}
	return &m
}

// Encode validates and encodes the module.
func (w *Writer) Encode() ([]byte, error) {
	m := w.Module()
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "validate module")
	}
	return m.Encode(), nil
}

func (w *Writer) nameSection() []byte {
	out := binary.NewWriter()
	writeNameMap(out, nameSubsectionFunctions, w.funcNames)
	writeNameMap(out, nameSubsectionTypes, w.typeNames)
	return out.Bytes()
}

func writeNameMap(out *binary.Writer, id byte, names map[uint32]string) {
	if len(names) == 0 {
		return
	}
	idxs := make([]uint32, 0, len(names))
	for idx := range names {
		idxs = append(idxs, idx)
	}
	sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })

	sub := binary.NewWriter()
	sub.WriteU32(uint32(len(idxs)))
	for _, idx := range idxs {
		sub.WriteU32(idx)
		sub.WriteName(names[idx])
	}
	out.Byte(id)
	out.WriteU32(uint32(sub.Len()))
	out.WriteBytes(sub.Bytes())
}
