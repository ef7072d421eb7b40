package typemgr

import (
	stderrors "errors"

	"github.com/wippyai/wasm-classlayout/classfile"
)

const stringSig = "()Ljava/lang/String;"

var (
	objectToString = classfile.MethodRef{Class: classfile.ObjectClass, Name: "toString", Signature: stringSig}
	objectHashCode = classfile.MethodRef{Class: classfile.ObjectClass, Name: "hashCode", Signature: "()I"}
	animalToString = classfile.MethodRef{Class: "Animal", Name: "toString", Signature: stringSig}
	animalSpeak    = classfile.MethodRef{Class: "Animal", Name: "speak", Signature: "()V"}
	dogSpeak       = classfile.MethodRef{Class: "Dog", Name: "speak", Signature: "()V"}
	dogFetch       = classfile.MethodRef{Class: "Dog", Name: "fetch", Signature: "()V"}
)

// zoo is Object <- Animal <- Dog, with Dog implementing the Pet interface.
func zoo() *classfile.MapLoader {
	return classfile.NewMapLoader(
		&classfile.ClassFile{
			Name: classfile.ObjectClass,
			Methods: []classfile.Method{
				{Name: classfile.ConstructorName, Signature: "()V"},
				{Name: "toString", Signature: stringSig},
				{Name: "hashCode", Signature: "()I"},
			},
		},
		&classfile.ClassFile{
			Name:       "Animal",
			SuperClass: classfile.ObjectClass,
			Fields: []classfile.Field{
				{Name: "name", Descriptor: "Ljava/lang/String;"},
				{Name: "age", Descriptor: "I"},
				{Name: "count", Descriptor: "I", Static: true},
			},
			Methods: []classfile.Method{
				{Name: classfile.ConstructorName, Signature: "()V"},
				{Name: "toString", Signature: stringSig},
				{Name: "speak", Signature: "()V"},
				{Name: "create", Signature: "()LAnimal;", Static: true},
			},
		},
		&classfile.ClassFile{
			Name:       "Dog",
			SuperClass: "Animal",
			Interfaces: []string{"Pet"},
			Fields: []classfile.Field{
				{Name: "breed", Descriptor: "Ljava/lang/String;"},
			},
			Methods: []classfile.Method{
				{Name: "speak", Signature: "()V"},
				{Name: "fetch", Signature: "()V"},
			},
		},
		&classfile.ClassFile{
			Name: "Pet",
			Kind: classfile.KindInterface,
			Methods: []classfile.Method{
				{Name: "play", Signature: "()V"},
			},
		},
	)
}

func pointLoader() *classfile.MapLoader {
	return classfile.NewMapLoader(
		&classfile.ClassFile{Name: classfile.ObjectClass},
		&classfile.ClassFile{
			Name:       "Point",
			SuperClass: classfile.ObjectClass,
			Fields: []classfile.Field{
				{Name: "x", Descriptor: "I"},
				{Name: "y", Descriptor: "I"},
			},
		},
	)
}

type recordingWriter struct {
	fail    string
	written []string
}

func (w *recordingWriter) WriteStructType(t *StructType) (int, error) {
	if t.Name() == w.fail {
		return 0, stderrors.New("writer rejected " + t.Name())
	}
	w.written = append(w.written, t.Name())
	return len(w.written) - 1, nil
}

type arrayRecordingWriter struct {
	recordingWriter
	arrays []string
}

func (w *arrayRecordingWriter) WriteArrayType(a *ArrayType) (int, error) {
	w.arrays = append(w.arrays, a.Component().TypeKey())
	return 100 + len(w.arrays) - 1, nil
}

func mustStruct(r *Registry, name string) *StructType {
	t, err := r.StructOf(name)
	if err != nil {
		panic(err)
	}
	return t
}

func fieldNames(fields []NamedField) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Owner + "." + f.Name
	}
	return out
}

func methodNames(refs []classfile.MethodRef) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
