package probe

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/errors"
	"github.com/wippyai/wasm-classlayout/typemgr"
)

// Verify replays dispatch and instanceof for every resolved struct in reg
// and returns the first disagreement with the registry.
func (p *Probe) Verify(ctx context.Context, reg *typemgr.Registry, functions typemgr.FunctionManager) error {
	structs := reg.Structs()
	checked := 0
	for _, st := range structs {
		if !st.Resolved() || st.VTableOffset() < 0 {
			continue
		}
		offset := st.VTableOffset()

		for i, m := range st.Methods() {
			slot := i + typemgr.VTableFirstFunctionIndex
			got, err := p.Dispatch(ctx, offset, slot)
			if err != nil {
				return err
			}
			if want := functions.FunctionID(m); got != want {
				return mismatch(st, "method "+m.String(), want, got)
			}
		}

		listed := make(map[*typemgr.StructType]bool)
		for _, t := range st.InstanceOfs() {
			listed[t] = true
		}
		for _, other := range structs {
			got, err := p.InstanceOf(ctx, offset, other.ClassIndex())
			if err != nil {
				return err
			}
			if got != listed[other] {
				return mismatch(st, "instanceof "+other.Name(), listed[other], got)
			}
		}
		checked++
	}

	Logger().Debug("metadata verified", zap.Int("structs", checked))
	return nil
}

func mismatch(st *typemgr.StructType, what string, want, got any) error {
	return errors.New(errors.PhaseProbe, errors.KindInvalidData).
		Class(st.Name()).
		Path(st.Name(), what).
		Value(got).
		Detail("%s at vtable %s: got %v, want %v", what, strconv.Itoa(st.VTableOffset()), got, want).
		Build()
}
