package classfile

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-classlayout/errors"
)

func TestMethodRefKey(t *testing.T) {
	a := MethodRef{Class: "Animal", Name: "toString", Signature: "()Ljava/lang/String;"}
	b := MethodRef{Class: ObjectClass, Name: "toString", Signature: "()Ljava/lang/String;"}
	c := MethodRef{Class: "Animal", Name: "toString", Signature: "(I)Ljava/lang/String;"}

	if !a.SameSlot(b) || a.Key() != b.Key() {
		t.Error("override with same name and signature should share a slot")
	}
	if a.SameSlot(c) {
		t.Error("overload with different signature must not share a slot")
	}
	if a.String() != "Animal.toString()Ljava/lang/String;" {
		t.Errorf("String() = %q", a.String())
	}
}

func TestMethodIsVirtual(t *testing.T) {
	tests := []struct {
		m    Method
		want bool
	}{
		{Method{Name: "run", Signature: "()V"}, true},
		{Method{Name: "main", Signature: "([Ljava/lang/String;)V", Static: true}, false},
		{Method{Name: ConstructorName, Signature: "()V"}, false},
	}
	for _, tt := range tests {
		if got := tt.m.IsVirtual(); got != tt.want {
			t.Errorf("%s IsVirtual = %v, want %v", tt.m.Name, got, tt.want)
		}
	}
}

func TestMapLoader(t *testing.T) {
	l := NewMapLoader(&ClassFile{Name: ObjectClass}, &ClassFile{Name: "Animal", SuperClass: ObjectClass})

	c, err := l.Load("Animal")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SuperClass != ObjectClass {
		t.Errorf("SuperClass = %q", c.SuperClass)
	}

	_, err = l.Load("Missing")
	if !stderrors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	names := l.Names()
	if len(names) != 2 || names[0] != "Animal" {
		t.Errorf("Names = %v", names)
	}
}

func TestParseMethodRef(t *testing.T) {
	ref, err := ParseMethodRef("java/lang/Object.toString()Ljava/lang/String;")
	if err != nil {
		t.Fatalf("ParseMethodRef: %v", err)
	}
	want := MethodRef{Class: ObjectClass, Name: "toString", Signature: "()Ljava/lang/String;"}
	if ref != want {
		t.Errorf("got %+v, want %+v", ref, want)
	}

	for _, bad := range []string{"toString", ".run()V", "Foo.()V"} {
		if _, err := ParseMethodRef(bad); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindInvalidInput}) {
			t.Errorf("ParseMethodRef(%q) err = %v", bad, err)
		}
	}
}

const sampleDocument = `{
  "classes": [
    {"name": "java/lang/Object", "methods": [{"name": "toString", "signature": "()Ljava/lang/String;"}]},
    {"name": "Named", "interface": true, "methods": [{"name": "name", "signature": "()Ljava/lang/String;"}]},
    {"name": "Animal", "super": "java/lang/Object", "interfaces": ["Named"],
     "fields": [{"name": "name", "type": "Ljava/lang/String;"}, {"name": "COUNT", "type": "I", "static": true}]}
  ],
  "usedFields": {"Animal": ["name"]},
  "invoked": ["java/lang/Object.toString()Ljava/lang/String;"],
  "arrays": ["I"]
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}

	order := doc.RegistrationOrder()
	if len(order) != 2 || order[0] != ObjectClass || order[1] != "Animal" {
		t.Errorf("RegistrationOrder = %v", order)
	}

	c, err := doc.Loader().Load("Named")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !c.IsInterface() {
		t.Error("Named should be an interface")
	}

	refs, err := doc.InvokedMethods()
	if err != nil || len(refs) != 1 || refs[0].Name != "toString" {
		t.Errorf("InvokedMethods = %v, %v", refs, err)
	}
}

func TestDecodeDocumentRejectsDuplicates(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(`{"classes": [{"name": "A"}, {"name": "A"}]}`))
	if err == nil {
		t.Fatal("expected duplicate class error")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestDecodeDocumentRejectsUnknownFields(t *testing.T) {
	_, err := DecodeDocument(strings.NewReader(`{"classes": [], "bogus": 1}`))
	if err == nil {
		t.Fatal("expected unknown field error")
	}
}
