package funcmgr

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-classlayout/classfile"
)

// Manager is the default function manager. Thread-safe.
type Manager struct {
	ids     map[classfile.MethodRef]int32
	slots   map[classfile.MethodRef]int
	order   []classfile.MethodRef
	firstID int32
	mu      sync.Mutex
}

// New creates a Manager whose first function id is 0.
func New() *Manager {
	return NewWithOffset(0)
}

// NewWithOffset creates a Manager whose function ids start at firstID,
// typically the number of imported functions of the target module.
func NewWithOffset(firstID int32) *Manager {
	return &Manager{
		ids:     make(map[classfile.MethodRef]int32),
		slots:   make(map[classfile.MethodRef]int),
		firstID: firstID,
	}
}

// MarkNeeded records that ref must be emitted. Ids are assigned densely in
// first-mark order; marking twice is a no-op.
func (m *Manager) MarkNeeded(ref classfile.MethodRef) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[ref]; ok {
		return
	}
	id := m.firstID + int32(len(m.order))
	m.ids[ref] = id
	m.order = append(m.order, ref)
	Logger().Debug("function needed", zap.Stringer("method", ref), zap.Int32("id", id))
}

// IsNeeded reports whether ref was marked needed.
func (m *Manager) IsNeeded(ref classfile.MethodRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.ids[ref]
	return ok
}

// SetFunctionIndex records the vtable index of a virtual method.
func (m *Manager) SetFunctionIndex(ref classfile.MethodRef, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[ref] = idx
}

// FunctionIndex returns the vtable index recorded for ref.
func (m *Manager) FunctionIndex(ref classfile.MethodRef) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.slots[ref]
	return idx, ok
}

// FunctionID returns the function id of ref, or -1 if it was never marked needed.
func (m *Manager) FunctionID(ref classfile.MethodRef) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.ids[ref]
	if !ok {
		return -1
	}
	return id
}

// Needed returns the needed methods in id order.
func (m *Manager) Needed() []classfile.MethodRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]classfile.MethodRef, len(m.order))
	copy(out, m.order)
	return out
}
