package typemgr

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/wasm-classlayout/classfile"
	"github.com/wippyai/wasm-classlayout/errors"
	"github.com/wippyai/wasm-classlayout/funcmgr"
)

func TestStructOfDenseClassIndexes(t *testing.T) {
	r := New(DefaultOptions())

	names := []string{"A", "B", "A", "C", "B"}
	want := []int{0, 1, 0, 2, 1}
	for i, name := range names {
		s, err := r.StructOf(name)
		if err != nil {
			t.Fatalf("StructOf(%s): %v", name, err)
		}
		if s.ClassIndex() != want[i] {
			t.Errorf("StructOf(%s).ClassIndex() = %d, want %d", name, s.ClassIndex(), want[i])
		}
	}
	if got := len(r.Structs()); got != 3 {
		t.Errorf("len(Structs) = %d, want 3", got)
	}
	a := mustStruct(r, "A")
	if a.Code() != UndefinedCode {
		t.Errorf("Code before finalize = %d, want UndefinedCode", a.Code())
	}
	if a.String() != "$A" {
		t.Errorf("String() = %q, want $A", a.String())
	}
	if a.VTableOffset() != -1 {
		t.Errorf("VTableOffset before serialization = %d", a.VTableOffset())
	}
}

func TestArrayOfIdentity(t *testing.T) {
	r := New(DefaultOptions())

	ints, err := r.ArrayOf(ValueI32)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := r.ArrayOf(ValueI32)
	if ints != again {
		t.Error("ArrayOf returned a new descriptor for the same component")
	}
	dog := mustStruct(r, "Dog")
	dogs, _ := r.ArrayOf(dog)
	if dogs == ints {
		t.Error("different components share a descriptor")
	}
	nested, _ := r.ArrayOf(dogs)
	if nested.TypeKey() != "[[LDog;" {
		t.Errorf("TypeKey = %q", nested.TypeKey())
	}
	if _, err := r.ArrayOf(nil); err == nil {
		t.Error("nil component accepted")
	}
	if _, err := r.ArrayOf((*StructType)(nil)); err == nil {
		t.Error("typed nil struct component accepted")
	}
	if _, err := r.ArrayOf((*ArrayType)(nil)); err == nil {
		t.Error("typed nil array component accepted")
	}
	if _, ok := r.LookupArray((*StructType)(nil)); ok {
		t.Error("LookupArray found a nil component")
	}
	if _, ok := r.LookupArray(nil); ok {
		t.Error("LookupArray found a nil interface")
	}
	if got := len(r.Arrays()); got != 3 {
		t.Errorf("len(Arrays) = %d, want 3", got)
	}
}

func TestTypeOf(t *testing.T) {
	r := New(DefaultOptions())

	tests := []struct {
		desc string
		key  string
	}{
		{"I", "i32"},
		{"J", "i64"},
		{"F", "f32"},
		{"D", "f64"},
		{"Z", "i8"},
		{"B", "i8"},
		{"C", "i16"},
		{"S", "i16"},
		{"LDog;", "LDog;"},
		{"[I", "[i32"},
		{"[[Ljava/lang/String;", "[[Ljava/lang/String;"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			typ, err := r.TypeOf(tt.desc)
			if err != nil {
				t.Fatalf("TypeOf: %v", err)
			}
			if typ.TypeKey() != tt.key {
				t.Errorf("TypeKey = %q, want %q", typ.TypeKey(), tt.key)
			}
		})
	}

	if _, ok := r.Lookup("java/lang/String"); !ok {
		t.Error("object descriptor did not register the struct")
	}
	for _, bad := range []string{"", "Q", "L;", "LDog", "II"} {
		if _, err := r.TypeOf(bad); err == nil {
			t.Errorf("TypeOf(%q) accepted", bad)
		}
	}
}

func TestFreezeRejectsNewTypes(t *testing.T) {
	r := New(DefaultOptions())
	mustStruct(r, "Point")
	ints, _ := r.ArrayOf(ValueI32)

	loader := pointLoader()
	if err := r.Finalize(&recordingWriter{}, funcmgr.New(), loader); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if r.State() != StateFrozen {
		t.Fatalf("State = %v, want frozen", r.State())
	}

	if s, err := r.StructOf("Point"); err != nil || s.Name() != "Point" {
		t.Errorf("existing struct after freeze: %v, %v", s, err)
	}
	if a, err := r.ArrayOf(ValueI32); err != nil || a != ints {
		t.Errorf("existing array after freeze: %v", err)
	}

	_, err := r.StructOf("Late")
	if !stderrors.Is(err, errors.ErrLateRegistration) {
		t.Errorf("StructOf after freeze = %v, want late registration", err)
	}
	_, err = r.ArrayOf(ValueF64)
	if !stderrors.Is(err, errors.ErrLateRegistration) {
		t.Errorf("ArrayOf after freeze = %v, want late registration", err)
	}
	if _, ok := r.Lookup("Late"); ok {
		t.Error("late struct was registered")
	}
}

func TestFinalizeTwice(t *testing.T) {
	r := New(DefaultOptions())
	mustStruct(r, "Point")
	w := &recordingWriter{}

	if err := r.Finalize(w, funcmgr.New(), pointLoader()); err != nil {
		t.Fatal(err)
	}
	err := r.Finalize(w, funcmgr.New(), pointLoader())
	if !stderrors.Is(err, errors.ErrAlreadyFinalized) {
		t.Errorf("second Finalize = %v, want already finalized", err)
	}
	if len(w.written) != 1 {
		t.Errorf("writer saw %v", w.written)
	}
}

func TestMarkFieldUsed(t *testing.T) {
	r := New(DefaultOptions())
	if err := r.MarkFieldUsed("Point", "x"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkFieldUsed("Point", "x"); err != nil {
		t.Fatal(err)
	}
	p, ok := r.Lookup("Point")
	if !ok {
		t.Fatal("MarkFieldUsed did not register the struct")
	}
	if got := p.NeededFields(); !equalStrings(got, []string{"x"}) {
		t.Errorf("NeededFields = %v", got)
	}

	if err := r.Finalize(&recordingWriter{}, funcmgr.New(), pointLoader()); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkFieldUsed("Point", "x"); err != nil {
		t.Errorf("re-marking a used field after freeze: %v", err)
	}
	err := r.MarkFieldUsed("Point", "y")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidState {
		t.Errorf("new field after freeze = %v, want invalid state", err)
	}
	if err := r.MarkFieldUsed("Other", "x"); !stderrors.Is(err, errors.ErrLateRegistration) {
		t.Errorf("unknown struct after freeze = %v, want late registration", err)
	}
}

func TestFinalizeWritesInRegistrationOrder(t *testing.T) {
	r := New(DefaultOptions())
	for _, name := range []string{"Dog", classfile.ObjectClass, "Animal"} {
		mustStruct(r, name)
	}
	ints, _ := r.ArrayOf(ValueI32)
	dog, _ := r.Lookup("Dog")
	dogs, _ := r.ArrayOf(dog)

	w := &arrayRecordingWriter{}
	if err := r.Finalize(w, funcmgr.New(), zoo()); err != nil {
		t.Fatal(err)
	}
	if want := []string{"Dog", classfile.ObjectClass, "Animal"}; !equalStrings(w.written, want) {
		t.Errorf("written = %v, want %v", w.written, want)
	}
	if want := []string{"i32", "LDog;"}; !equalStrings(w.arrays, want) {
		t.Errorf("arrays = %v, want %v", w.arrays, want)
	}
	if dog.Code() != 0 {
		t.Errorf("Dog code = %d, want 0", dog.Code())
	}
	if ints.Code() != 100 || dogs.Code() != 101 {
		t.Errorf("array codes = %d, %d", ints.Code(), dogs.Code())
	}
}

func TestFinalizeWithoutArrayWriter(t *testing.T) {
	r := New(DefaultOptions())
	mustStruct(r, "Point")
	ints, _ := r.ArrayOf(ValueI32)

	if err := r.Finalize(&recordingWriter{}, funcmgr.New(), pointLoader()); err != nil {
		t.Fatal(err)
	}
	if ints.Code() != UndefinedCode {
		t.Errorf("array code = %d, want UndefinedCode", ints.Code())
	}
}

func TestFinalizeWriterError(t *testing.T) {
	r := New(DefaultOptions())
	mustStruct(r, classfile.ObjectClass)
	mustStruct(r, "Animal")
	mustStruct(r, "Dog")

	w := &recordingWriter{fail: "Animal"}
	err := r.Finalize(w, funcmgr.New(), zoo())
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("error = %v, want *errors.Error", err)
	}
	if e.Kind != errors.KindWriter || e.Class != "Animal" {
		t.Errorf("error = %+v", e)
	}
	if !equalStrings(w.written, []string{classfile.ObjectClass}) {
		t.Errorf("written = %v", w.written)
	}
	if r.State() != StateFrozen {
		t.Error("failed Finalize left the registry open")
	}
}
