package wasm

import (
	"github.com/wippyai/wasm-classlayout/internal/binary"
)

// Code assembles a function body instruction by instruction.
// Methods return the receiver so sequences read like the text format.
type Code struct {
	w *binary.Writer
}

// NewCode creates an empty instruction sequence.
func NewCode() *Code {
	return &Code{w: binary.NewWriter()}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.w.Bytes()
}

// Op emits an opcode without immediates.
func (c *Code) Op(op byte) *Code {
	c.w.Byte(op)
	return c
}

// LocalGet emits local.get idx.
func (c *Code) LocalGet(idx uint32) *Code {
	c.w.Byte(OpLocalGet)
	c.w.WriteU32(idx)
	return c
}

// LocalSet emits local.set idx.
func (c *Code) LocalSet(idx uint32) *Code {
	c.w.Byte(OpLocalSet)
	c.w.WriteU32(idx)
	return c
}

// LocalTee emits local.tee idx.
func (c *Code) LocalTee(idx uint32) *Code {
	c.w.Byte(OpLocalTee)
	c.w.WriteU32(idx)
	return c
}

// I32Const emits i32.const v.
func (c *Code) I32Const(v int32) *Code {
	c.w.Byte(OpI32Const)
	c.w.WriteS32(v)
	return c
}

// I32Load emits i32.load with the given offset and log2 alignment.
func (c *Code) I32Load(offset, alignLog2 uint32) *Code {
	c.w.Byte(OpI32Load)
	c.w.WriteU32(alignLog2)
	c.w.WriteU32(offset)
	return c
}

// Block opens a block without results.
func (c *Code) Block() *Code {
	c.w.Byte(OpBlock)
	c.w.Byte(BlockTypeEmpty)
	return c
}

// Loop opens a loop without results.
func (c *Code) Loop() *Code {
	c.w.Byte(OpLoop)
	c.w.Byte(BlockTypeEmpty)
	return c
}

// If opens an if without results.
func (c *Code) If() *Code {
	c.w.Byte(OpIf)
	c.w.Byte(BlockTypeEmpty)
	return c
}

// Br emits br depth.
func (c *Code) Br(depth uint32) *Code {
	c.w.Byte(OpBr)
	c.w.WriteU32(depth)
	return c
}

// BrIf emits br_if depth.
func (c *Code) BrIf(depth uint32) *Code {
	c.w.Byte(OpBrIf)
	c.w.WriteU32(depth)
	return c
}

// StructGet emits struct.get typeIdx fieldIdx.
func (c *Code) StructGet(typeIdx, fieldIdx uint32) *Code {
	c.w.Byte(OpPrefixGC)
	c.w.WriteU32(GCStructGet)
	c.w.WriteU32(typeIdx)
	c.w.WriteU32(fieldIdx)
	return c
}

// End emits end.
func (c *Code) End() *Code {
	c.w.Byte(OpEnd)
	return c
}
