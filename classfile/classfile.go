package classfile

import (
	stderrors "errors"
)

// ErrNotFound is returned by a Loader for an unknown class name.
var ErrNotFound = stderrors.New("class not found")

// ObjectClass is the name of the universal root class.
const ObjectClass = "java/lang/Object"

// ConstructorName is the name of instance initializers; they never enter a vtable.
const ConstructorName = "<init>"

// Kind distinguishes classes from interfaces.
type Kind int

const (
	KindClass Kind = iota
	KindInterface
)

func (k Kind) String() string {
	if k == KindInterface {
		return "interface"
	}
	return "class"
}

// Field is a declared field.
type Field struct {
	Name       string `json:"name"`
	Descriptor string `json:"type"` // JVM field descriptor, e.g. "I" or "Ljava/lang/String;"
	Static     bool   `json:"static,omitempty"`
}

// Method is a declared method.
type Method struct {
	Name      string `json:"name"`
	Signature string `json:"signature"` // JVM method descriptor, e.g. "()Ljava/lang/String;"
	Static    bool   `json:"static,omitempty"`
}

// IsVirtual reports whether the method can occupy a vtable slot.
func (m Method) IsVirtual() bool {
	return !m.Static && m.Name != ConstructorName
}

// ClassFile is the loaded metadata of one class or interface.
type ClassFile struct {
	Name       string
	Kind       Kind
	SuperClass string // empty for the root class and for interfaces without one
	Interfaces []string
	Fields     []Field
	Methods    []Method
}

// IsInterface reports whether the class file declares an interface.
func (c *ClassFile) IsInterface() bool {
	return c.Kind == KindInterface
}

// Ref returns the identity of a method declared by this class.
func (c *ClassFile) Ref(m Method) MethodRef {
	return MethodRef{Class: c.Name, Name: m.Name, Signature: m.Signature}
}

// Loader resolves class names to class metadata.
type Loader interface {
	// Load returns the class file for name. A missing class yields
	// ErrNotFound (or a nil file with a nil error).
	Load(name string) (*ClassFile, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(name string) (*ClassFile, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) (*ClassFile, error) {
	return f(name)
}
