package classfile

// MethodRef identifies a method implementation: the declaring class plus
// the name and signature.
type MethodRef struct {
	Class     string
	Name      string
	Signature string
}

// Key returns the override key (name and signature, without the class).
// Two methods with the same key occupy the same vtable slot.
func (r MethodRef) Key() string {
	return r.Name + r.Signature
}

// SameSlot reports whether r overrides or is overridden by other.
func (r MethodRef) SameSlot(other MethodRef) bool {
	return r.Name == other.Name && r.Signature == other.Signature
}

func (r MethodRef) String() string {
	return r.Class + "." + r.Name + r.Signature
}
