package typemgr

import (
	"github.com/wippyai/wasm-classlayout/classfile"
	"github.com/wippyai/wasm-classlayout/errors"
	"github.com/wippyai/wasm-classlayout/internal/binary"
)

// headerSize is the byte size of the two offset words of a record.
const headerSize = VTableFirstFunctionIndex * 4

// MetadataBlob is the byte stream shared by all metadata records.
type MetadataBlob struct {
	w *binary.Writer
}

// NewMetadataBlob creates an empty blob.
func NewMetadataBlob() *MetadataBlob {
	return &MetadataBlob{w: binary.NewWriter()}
}

// Len returns the current size in bytes.
func (b *MetadataBlob) Len() int { return b.w.Len() }

// Bytes returns the encoded blob.
func (b *MetadataBlob) Bytes() []byte { return b.w.Bytes() }

// WriteTo appends the struct's metadata record to blob and records its
// offset. functionID maps each vtable entry to its global function id.
func (t *StructType) WriteTo(blob *MetadataBlob, functionID func(classfile.MethodRef) int32) error {
	if !t.resolved {
		return errors.NotFinalized("metadata record of " + t.name)
	}
	if t.serialized {
		return errors.New(errors.PhaseEncode, errors.KindInvalidState).
			Class(t.name).
			Detail("metadata record already written at offset %d", t.vtableOffset).
			Build()
	}

	body := binary.NewWriter()
	for _, m := range t.methods {
		body.WriteI32LE(functionID(m))
	}
	tableEnd := int32(body.Len() + headerSize)

	body.WriteI32LE(int32(len(t.instanceOfs)))
	for _, s := range t.instanceOfs {
		body.WriteI32LE(int32(s.classIndex))
	}

	t.vtableOffset = blob.Len()
	t.serialized = true
	blob.w.WriteI32LE(tableEnd) // interface call table, shares the instanceof list
	blob.w.WriteI32LE(tableEnd)
	blob.w.WriteBytes(body.Bytes())
	return nil
}

// Metadata is one decoded record.
type Metadata struct {
	FunctionIDs      []int32
	InstanceOfs      []int32
	Offset           int
	InterfaceCallsAt int32
	InstanceOfsAt    int32
}

// Words returns the record size in int32 words.
func (m *Metadata) Words() int {
	return VTableFirstFunctionIndex + len(m.FunctionIDs) + 1 + len(m.InstanceOfs)
}

// FunctionAt returns the function id stored at a function index as handed
// to FunctionManager.SetFunctionIndex, header words included.
func (m *Metadata) FunctionAt(functionIndex int) (int32, error) {
	slot := functionIndex - VTableFirstFunctionIndex
	if slot < 0 || slot >= len(m.FunctionIDs) {
		return 0, errors.OutOfBounds(errors.PhaseDecode, []string{"vtable"}, functionIndex, len(m.FunctionIDs)+VTableFirstFunctionIndex)
	}
	return m.FunctionIDs[slot], nil
}

// IsInstanceOf reports whether the record lists classIndex.
func (m *Metadata) IsInstanceOf(classIndex int) bool {
	for _, c := range m.InstanceOfs {
		if int(c) == classIndex {
			return true
		}
	}
	return false
}

// DecodeMetadata reads the record starting at offset.
func DecodeMetadata(blob []byte, offset int) (*Metadata, error) {
	r := binary.NewReader(blob)
	if err := r.Reset(offset); err != nil {
		return nil, errors.OutOfBounds(errors.PhaseDecode, []string{"record"}, offset, len(blob))
	}
	m := &Metadata{Offset: offset}

	var err error
	if m.InterfaceCallsAt, err = r.ReadI32LE(); err != nil {
		return nil, truncated("header", err)
	}
	if m.InstanceOfsAt, err = r.ReadI32LE(); err != nil {
		return nil, truncated("header", err)
	}
	if m.InstanceOfsAt < headerSize || (m.InstanceOfsAt-headerSize)%4 != 0 {
		return nil, errors.InvalidData(errors.PhaseDecode, []string{"header"}, "misaligned instanceof offset")
	}

	k := int(m.InstanceOfsAt-headerSize) / 4
	if k > r.Len()/4 {
		return nil, errors.OutOfBounds(errors.PhaseDecode, []string{"vtable"}, k, r.Len()/4)
	}
	m.FunctionIDs = make([]int32, k)
	for i := range m.FunctionIDs {
		if m.FunctionIDs[i], err = r.ReadI32LE(); err != nil {
			return nil, truncated("vtable", err)
		}
	}

	count, err := r.ReadI32LE()
	if err != nil {
		return nil, truncated("instanceof", err)
	}
	if count < 0 || int(count) > r.Len()/4 {
		return nil, errors.OutOfBounds(errors.PhaseDecode, []string{"instanceof"}, int(count), r.Len()/4)
	}
	m.InstanceOfs = make([]int32, count)
	for i := range m.InstanceOfs {
		if m.InstanceOfs[i], err = r.ReadI32LE(); err != nil {
			return nil, truncated("instanceof", err)
		}
	}
	return m, nil
}

func truncated(part string, cause error) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(part).
		Cause(cause).
		Detail("truncated metadata record").
		Build()
}
