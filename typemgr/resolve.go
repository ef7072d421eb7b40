package typemgr

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/classfile"
	"github.com/wippyai/wasm-classlayout/errors"
)

// layout accumulates one struct's resolution while its ancestors are walked.
type layout struct {
	seen        map[*StructType]struct{}
	fields      []NamedField
	methods     []classfile.MethodRef
	instanceOfs []*StructType
}

func newLayout(t *StructType) layout {
	var l layout
	l.seen = make(map[*StructType]struct{})
	return l.withInstanceOf(t)
}

func (l layout) withInstanceOf(t *StructType) layout {
	if _, ok := l.seen[t]; ok {
		return l
	}
	l.seen[t] = struct{}{}
	l.instanceOfs = append(l.instanceOfs, t)
	return l
}

// slotOf returns the vtable index of the method ref overrides, or the
// current vtable length.
func (l layout) slotOf(ref classfile.MethodRef) int {
	for i, m := range l.methods {
		if m.SameSlot(ref) {
			return i
		}
	}
	return len(l.methods)
}

// fieldUsage maps a declaring class to the names of its used fields.
type fieldUsage map[string]map[string]struct{}

func (u fieldUsage) add(class, field string) {
	names, ok := u[class]
	if !ok {
		names = make(map[string]struct{})
		u[class] = names
	}
	names[field] = struct{}{}
}

func (u fieldUsage) uses(class, field string) bool {
	_, ok := u[class][field]
	return ok
}

type resolver struct {
	types     map[string]*StructType
	loader    classfile.Loader
	functions FunctionManager
	log       *zap.Logger
	usage     fieldUsage
	classes   map[string]*classfile.ClassFile
	walking   map[string]bool
}

func newResolver(types map[string]*StructType, loader classfile.Loader, functions FunctionManager, log *zap.Logger) *resolver {
	return &resolver{
		types:     types,
		loader:    loader,
		functions: functions,
		log:       log,
		usage:     make(fieldUsage),
		classes:   make(map[string]*classfile.ClassFile),
		walking:   make(map[string]bool),
	}
}

func (rv *resolver) load(name string) (*classfile.ClassFile, error) {
	if c, ok := rv.classes[name]; ok {
		return c, nil
	}
	c, err := rv.loader.Load(name)
	if err != nil && !stderrors.Is(err, classfile.ErrNotFound) {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Class(name).
			Cause(err).
			Detail("load class %s", name).
			Build()
	}
	if c == nil {
		return nil, errors.MissingClass(name, err)
	}
	rv.classes[name] = c
	return c, nil
}

// collectUsage pools, for each registered struct, the fields marked used
// on any registered struct along its superclass chain, and attributes each
// pooled name to every class on that chain declaring it. Layouts include a
// field based on its declaring class alone, so an ancestor's layout stays
// a prefix of every descendant's no matter which struct the mark came
// through. A redeclared field is attributed to each of its declarers.
func (rv *resolver) collectUsage(structs []*StructType) (fieldUsage, error) {
	usage := make(fieldUsage)
	for _, t := range structs {
		chain, err := rv.chainOf(t.name)
		if err != nil {
			return nil, err
		}

		pooled := make(map[string]struct{})
		for _, c := range chain {
			if s, ok := rv.types[c.Name]; ok {
				for _, name := range s.NeededFields() {
					pooled[name] = struct{}{}
				}
			}
		}

		declared := make(map[string]bool)
		for _, c := range chain {
			for _, f := range c.Fields {
				if f.Static {
					continue
				}
				if _, ok := pooled[f.Name]; ok {
					usage.add(c.Name, f.Name)
					declared[f.Name] = true
				}
			}
		}
		for _, name := range t.NeededFields() {
			if !declared[name] {
				rv.log.Debug("used field not declared",
					zap.String("type", t.name),
					zap.String("field", name))
			}
		}
	}
	return usage, nil
}

// chainOf returns className and its superclasses, root first. The walk
// stops below the first interface.
func (rv *resolver) chainOf(className string) ([]*classfile.ClassFile, error) {
	var chain []*classfile.ClassFile
	visited := make(map[string]bool)
	for name := className; name != ""; {
		if visited[name] {
			return nil, cyclicHierarchy(name)
		}
		visited[name] = true

		c, err := rv.load(name)
		if err != nil {
			return nil, err
		}
		if c.IsInterface() {
			break
		}
		chain = append(chain, c)
		name = c.SuperClass
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// resolve walks className and its superclasses, root first, and returns
// acc extended with their fields, vtable entries and registered structs.
func (rv *resolver) resolve(className string, acc layout) (layout, error) {
	c, err := rv.load(className)
	if err != nil {
		return acc, err
	}
	if c.IsInterface() {
		return acc, nil
	}
	if rv.walking[className] {
		return acc, cyclicHierarchy(className)
	}
	rv.walking[className] = true
	defer delete(rv.walking, className)

	if t, ok := rv.types[className]; ok {
		acc = acc.withInstanceOf(t)
	}
	// Interfaces are keyed by the class being walked, so they never add
	// an entry of their own; instanceof against an interface is not
	// encoded in the metadata yet.
	for range c.Interfaces {
		if t, ok := rv.types[className]; ok {
			acc = acc.withInstanceOf(t)
		}
	}

	if c.SuperClass != "" {
		if acc, err = rv.resolve(c.SuperClass, acc); err != nil {
			return acc, err
		}
	} else {
		acc.fields = append([]NamedField{vtableField(className)}, acc.fields...)
	}

	for _, f := range c.Fields {
		if f.Static || !rv.usage.uses(className, f.Name) {
			continue
		}
		acc.fields = append(acc.fields, NamedField{Owner: className, Name: f.Name, Descriptor: f.Descriptor})
	}

	for _, m := range c.Methods {
		if !m.IsVirtual() {
			continue
		}
		ref := c.Ref(m)
		idx := acc.slotOf(ref)
		switch {
		case idx < len(acc.methods):
			acc.methods[idx] = ref
			rv.functions.MarkNeeded(ref)
		case rv.functions.IsNeeded(ref):
			acc.methods = append(acc.methods, ref)
		}
		rv.functions.SetFunctionIndex(ref, idx+VTableFirstFunctionIndex)
	}
	return acc, nil
}

func cyclicHierarchy(className string) error {
	return errors.InvalidData(errors.PhaseResolve, []string{className}, "cyclic class hierarchy at "+className)
}
