package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/wasm-classlayout/wasm"
)

const hierarchy = `{
  "classes": [
    {"name": "java/lang/Object", "methods": [{"name": "toString", "signature": "()Ljava/lang/String;"}]},
    {"name": "Animal", "super": "java/lang/Object",
     "fields": [{"name": "name", "type": "Ljava/lang/String;"}, {"name": "age", "type": "I"}],
     "methods": [{"name": "speak", "signature": "()V"}]},
    {"name": "Dog", "super": "Animal", "methods": [{"name": "speak", "signature": "()V"}]}
  ],
  "usedFields": {"Animal": ["age"]},
  "invoked": ["java/lang/Object.toString()Ljava/lang/String;", "Animal.speak()V"],
  "arrays": ["I"]
}`

func writeHierarchy(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classes.json")
	if err := os.WriteFile(path, []byte(hierarchy), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.wasm")
	res, err := compile(context.Background(), options{
		classes: writeHierarchy(t),
		output:  out,
		root:    "java/lang/Object",
		verify:  true,
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !res.verified {
		t.Error("expected verified result")
	}

	bin, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bin, res.out.Binary) {
		t.Error("written module differs from the build output")
	}
	if _, err := wasm.ParseModuleValidate(bin); err != nil {
		t.Errorf("written module does not validate: %v", err)
	}
}

func TestCompileMissingClass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.json")
	doc := `{"classes": [{"name": "java/lang/Object"}, {"name": "Orphan", "super": "Missing"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := compile(context.Background(), options{classes: path, root: "java/lang/Object"})
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("expected missing class error, got %v", err)
	}
}

func TestWriteReport(t *testing.T) {
	res, err := compile(context.Background(), options{classes: writeHierarchy(t), root: "java/lang/Object"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	writeReport(&buf, res, false)
	got := buf.String()

	for _, want := range []string{
		"3 structs, 1 arrays",
		"struct $Dog",
		"parent $Animal",
		"Animal.age I",
		"Dog.speak()V",
		"instanceof Dog, Animal, java/lang/Object",
		"array $array_i32",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Animal.name") {
		t.Errorf("unused field in report:\n%s", got)
	}
}

func TestInteractiveFilter(t *testing.T) {
	res, err := compile(context.Background(), options{classes: writeHierarchy(t), root: "java/lang/Object"})
	if err != nil {
		t.Fatal(err)
	}

	m := newInteractiveModel("classes.json", res)
	if len(m.visible) != 3 {
		t.Fatalf("visible = %d, want 3", len(m.visible))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("dog")})
	if len(m.visible) != 1 || m.visible[0].Name() != "Dog" {
		t.Fatalf("filter dog: %d visible", len(m.visible))
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateDetail {
		t.Fatal("enter should open details")
	}
	if !strings.Contains(m.View(), "Dog.speak()V") {
		t.Errorf("detail view missing method:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateBrowse || len(m.visible) != 3 {
		t.Errorf("esc should return and clear the filter, state %d visible %d", m.state, len(m.visible))
	}
}
