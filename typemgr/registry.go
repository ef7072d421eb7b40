package typemgr

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/classfile"
	"github.com/wippyai/wasm-classlayout/errors"
)

// State is the lifecycle phase of a Registry.
type State int

const (
	// StateOpen accepts new types.
	StateOpen State = iota
	// StateFrozen rejects new types; layouts are final.
	StateFrozen
)

func (s State) String() string {
	if s == StateFrozen {
		return "frozen"
	}
	return "open"
}

// Registry owns the struct and array types of one compilation.
// It is safe for concurrent use.
type Registry struct {
	log         *zap.Logger
	structs     map[string]*StructType
	arrays      map[string]*ArrayType
	callVirtual *SyntheticFunction
	rootClass   string
	structOrder []*StructType
	arrayOrder  []*ArrayType
	mu          sync.Mutex
	state       State
}

// New creates an open registry.
func New(opts Options) *Registry {
	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	root := opts.RootClass
	if root == "" {
		root = classfile.ObjectClass
	}
	return &Registry{
		log:       log,
		structs:   make(map[string]*StructType),
		arrays:    make(map[string]*ArrayType),
		rootClass: root,
	}
}

// State returns the current lifecycle phase.
func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// checkOpen is the single lifecycle assertion for registrations.
func (r *Registry) checkOpen(what, name string) error {
	if r.state == StateFrozen {
		return errors.LateRegistration(what, name)
	}
	return nil
}

// StructOf returns the struct for a class, creating it on first use.
// Creating a struct after Finalize fails with errors.ErrLateRegistration.
func (r *Registry) StructOf(name string) (*StructType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.structOf(name)
}

func (r *Registry) structOf(name string) (*StructType, error) {
	if t, ok := r.structs[name]; ok {
		return t, nil
	}
	if err := r.checkOpen("struct", name); err != nil {
		return nil, err
	}
	t := newStructType(name, len(r.structOrder))
	r.structs[name] = t
	r.structOrder = append(r.structOrder, t)
	r.log.Debug("type registered", zap.String("type", name), zap.Int("class_index", t.classIndex))
	return t, nil
}

// ArrayOf returns the array type for a component, creating it on first use.
func (r *Registry) ArrayOf(component AnyType) (*ArrayType, error) {
	if isNilType(component) {
		return nil, errors.InvalidInput(errors.PhaseScan, "nil array component")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := component.TypeKey()
	if a, ok := r.arrays[key]; ok {
		return a, nil
	}
	if err := r.checkOpen("array", "["+key); err != nil {
		return nil, err
	}
	a := &ArrayType{component: component, code: UndefinedCode}
	r.arrays[key] = a
	r.arrayOrder = append(r.arrayOrder, a)
	r.log.Debug("array type registered", zap.String("component", key))
	return a, nil
}

// TypeOf maps a JVM field descriptor to a storage type, registering the
// struct or array types it references.
func (r *Registry) TypeOf(desc string) (AnyType, error) {
	if desc == "" {
		return nil, errors.InvalidInput(errors.PhaseScan, "empty descriptor")
	}
	if v, ok := ValueTypeOf(desc[0]); ok && len(desc) == 1 {
		return v, nil
	}
	switch desc[0] {
	case 'L':
		if len(desc) < 3 || desc[len(desc)-1] != ';' {
			break
		}
		return r.StructOf(desc[1 : len(desc)-1])
	case '[':
		elem, err := r.TypeOf(desc[1:])
		if err != nil {
			return nil, err
		}
		return r.ArrayOf(elem)
	}
	return nil, errors.InvalidInput(errors.PhaseScan, "malformed descriptor "+desc)
}

// MarkFieldUsed records that compiled code accesses the named field through
// the class's struct. Fields never marked are left out of every layout.
func (r *Registry) MarkFieldUsed(className, field string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.structs[className]
	if !ok {
		var err error
		if t, err = r.structOf(className); err != nil {
			return err
		}
	}
	if r.state == StateFrozen {
		if _, ok := t.needed[field]; ok {
			return nil
		}
		return errors.New(errors.PhaseScan, errors.KindInvalidState).
			Class(className).
			Detail("field %s marked used after finalization", field).
			Build()
	}
	t.needed[field] = struct{}{}
	return nil
}

// Lookup returns a registered struct without creating it.
func (r *Registry) Lookup(name string) (*StructType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.structs[name]
	return t, ok
}

// LookupArray returns a registered array type without creating it.
func (r *Registry) LookupArray(component AnyType) (*ArrayType, bool) {
	if isNilType(component) {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.arrays[component.TypeKey()]
	return a, ok
}

// Structs returns the registered structs in registration order.
func (r *Registry) Structs() []*StructType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*StructType(nil), r.structOrder...)
}

// Arrays returns the registered array types in registration order.
func (r *Registry) Arrays() []*ArrayType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*ArrayType(nil), r.arrayOrder...)
}

// Finalize freezes the registry, resolves every struct against its class
// hierarchy and passes it to the writer in registration order. Array types
// follow if the writer implements ArrayTypeWriter.
//
// Finalize may run once; the registry stays frozen even if it fails.
func (r *Registry) Finalize(writer TypeWriter, functions FunctionManager, loader classfile.Loader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateFrozen {
		return errors.AlreadyFinalized()
	}
	r.state = StateFrozen
	r.log.Debug("registry frozen",
		zap.Int("structs", len(r.structOrder)),
		zap.Int("arrays", len(r.arrayOrder)))

	rv := newResolver(r.structs, loader, functions, r.log)
	usage, err := rv.collectUsage(r.structOrder)
	if err != nil {
		return err
	}
	rv.usage = usage

	for _, t := range r.structOrder {
		if err := r.writeStructType(t, rv, writer); err != nil {
			return err
		}
	}

	aw, ok := writer.(ArrayTypeWriter)
	if !ok {
		return nil
	}
	for _, a := range r.arrayOrder {
		code, err := aw.WriteArrayType(a)
		if err != nil {
			return errors.New(errors.PhaseFinalize, errors.KindWriter).
				WasmType(a.String()).
				Cause(err).
				Detail("write array type").
				Build()
		}
		a.code = code
	}
	return nil
}

func (r *Registry) writeStructType(t *StructType, rv *resolver, writer TypeWriter) error {
	r.log.Debug("write type", zap.String("type", t.name))

	acc, err := rv.resolve(t.name, newLayout(t))
	if err != nil {
		return err
	}
	t.fields = acc.fields
	t.methods = acc.methods
	t.instanceOfs = acc.instanceOfs
	t.resolved = true

	code, err := writer.WriteStructType(t)
	if err != nil {
		return errors.Writer(t.name, err)
	}
	t.code = code
	return nil
}

// WriteMetadata serializes every struct into a new blob in registration
// order. It requires a finalized registry and may only run once.
func (r *Registry) WriteMetadata(functions FunctionManager) (*MetadataBlob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateFrozen {
		return nil, errors.NotFinalized("metadata")
	}
	blob := NewMetadataBlob()
	for _, t := range r.structOrder {
		if err := t.WriteTo(blob, functions.FunctionID); err != nil {
			return nil, err
		}
		r.log.Debug("metadata record written",
			zap.String("type", t.name),
			zap.Int("offset", t.vtableOffset),
			zap.Int("methods", len(t.methods)))
	}
	return blob, nil
}
