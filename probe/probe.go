package probe

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/errors"
)

// Config holds configuration for probe creation.
type Config struct {
	// MemoryLimitPages caps the probe memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Probe is an instantiated probe module. Thread-safe.
type Probe struct {
	runtime    wazero.Runtime
	module     api.Module
	lookup     api.Function
	instanceOf api.Function
	size       uint32
	mu         sync.Mutex
}

// New instantiates a probe for blob with default configuration.
func New(ctx context.Context, blob []byte) (*Probe, error) {
	return NewWithConfig(ctx, blob, nil)
}

// NewWithConfig instantiates a probe for blob.
func NewWithConfig(ctx context.Context, blob []byte, cfg *Config) (*Probe, error) {
	bin, err := Module(blob)
	if err != nil {
		return nil, err
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	mod, err := runtime.InstantiateWithConfig(ctx, bin, wazero.NewModuleConfig().WithName("classlayout-probe"))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Instantiation(err)
	}

	Logger().Debug("probe instantiated", zap.Int("blob_bytes", len(blob)))
	return &Probe{
		runtime:    runtime,
		module:     mod,
		lookup:     mod.ExportedFunction(LookupExport),
		instanceOf: mod.ExportedFunction(InstanceOfExport),
		size:       uint32(len(blob)),
	}, nil
}

// Dispatch returns the function id callVirtual would load for an object
// whose vtable field holds vtableOffset, at a function index as recorded
// by the function manager.
func (p *Probe) Dispatch(ctx context.Context, vtableOffset, functionIndex int) (int32, error) {
	return p.call(ctx, p.lookup, vtableOffset, functionIndex*4)
}

// InstanceOf reports whether the record at vtableOffset lists classIndex.
func (p *Probe) InstanceOf(ctx context.Context, vtableOffset, classIndex int) (bool, error) {
	v, err := p.call(ctx, p.instanceOf, vtableOffset, classIndex)
	return v != 0, err
}

func (p *Probe) call(ctx context.Context, fn api.Function, a, b int) (int32, error) {
	if a < 0 || uint32(a) >= p.size {
		return 0, errors.OutOfBounds(errors.PhaseProbe, []string{"vtable"}, a, int(p.size))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := fn.Call(ctx, api.EncodeI32(int32(a)), api.EncodeI32(int32(b)))
	if err != nil {
		return 0, errors.New(errors.PhaseProbe, errors.KindInvalidData).
			Value(a).
			Cause(err).
			Detail("%s trapped", fn.Definition().Name()).
			Build()
	}
	return api.DecodeI32(res[0]), nil
}

// Close releases the wazero runtime.
func (p *Probe) Close(ctx context.Context) error {
	return p.runtime.Close(ctx)
}
