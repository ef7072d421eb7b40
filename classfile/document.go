package classfile

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wippyai/wasm-classlayout/errors"
)

// Document is a JSON description of a program's class hierarchy together
// with the usage signals a compiler front end would have gathered while
// scanning method bodies.
//
//	{
//	  "classes": [
//	    {"name": "java/lang/Object", "methods": [{"name": "toString", "signature": "()Ljava/lang/String;"}]},
//	    {"name": "Animal", "super": "java/lang/Object", "fields": [{"name": "name", "type": "Ljava/lang/String;"}]}
//	  ],
//	  "register": ["java/lang/Object", "Animal"],
//	  "usedFields": {"Animal": ["name"]},
//	  "invoked": ["java/lang/Object.toString()Ljava/lang/String;"],
//	  "arrays": ["I"]
//	}
type Document struct {
	Classes    []ClassDecl         `json:"classes"`
	Register   []string            `json:"register,omitempty"`
	UsedFields map[string][]string `json:"usedFields,omitempty"`
	Invoked    []string            `json:"invoked,omitempty"`
	Arrays     []string            `json:"arrays,omitempty"`
}

// ClassDecl is the JSON form of a ClassFile.
type ClassDecl struct {
	Name       string   `json:"name"`
	Interface  bool     `json:"interface,omitempty"`
	Super      string   `json:"super,omitempty"`
	Interfaces []string `json:"interfaces,omitempty"`
	Fields     []Field  `json:"fields,omitempty"`
	Methods    []Method `json:"methods,omitempty"`
}

// ClassFile converts the declaration.
func (d ClassDecl) ClassFile() *ClassFile {
	kind := KindClass
	if d.Interface {
		kind = KindInterface
	}
	return &ClassFile{
		Name:       d.Name,
		Kind:       kind,
		SuperClass: d.Super,
		Interfaces: d.Interfaces,
		Fields:     d.Fields,
		Methods:    d.Methods,
	}
}

// DecodeDocument reads a JSON document.
func DecodeDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Load("decode class hierarchy", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) validate() error {
	seen := make(map[string]bool, len(d.Classes))
	for i, c := range d.Classes {
		if c.Name == "" {
			return errors.InvalidData(errors.PhaseLoad, []string{"classes", fmt.Sprint(i)}, "class without name")
		}
		if seen[c.Name] {
			return errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Class(c.Name).
				Detail("duplicate class declaration").
				Build()
		}
		seen[c.Name] = true
	}
	for _, s := range d.Invoked {
		if _, err := ParseMethodRef(s); err != nil {
			return err
		}
	}
	return nil
}

// Loader returns a MapLoader over the declared classes.
func (d *Document) Loader() *MapLoader {
	l := NewMapLoader()
	for _, c := range d.Classes {
		l.Add(c.ClassFile())
	}
	return l
}

// RegistrationOrder returns the classes to register. Without an explicit
// "register" list every non-interface class is registered in declaration order.
func (d *Document) RegistrationOrder() []string {
	if len(d.Register) > 0 {
		return d.Register
	}
	var names []string
	for _, c := range d.Classes {
		if !c.Interface {
			names = append(names, c.Name)
		}
	}
	return names
}

// InvokedMethods parses the invoked method list.
func (d *Document) InvokedMethods() ([]MethodRef, error) {
	refs := make([]MethodRef, 0, len(d.Invoked))
	for _, s := range d.Invoked {
		ref, err := ParseMethodRef(s)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ParseMethodRef parses "class.name(signature)result".
func ParseMethodRef(s string) (MethodRef, error) {
	paren := strings.IndexByte(s, '(')
	if paren < 0 {
		return MethodRef{}, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("method reference %q has no signature", s))
	}
	dot := strings.LastIndexByte(s[:paren], '.')
	if dot <= 0 || dot == paren-1 {
		return MethodRef{}, errors.InvalidInput(errors.PhaseLoad, fmt.Sprintf("method reference %q has no class", s))
	}
	return MethodRef{
		Class:     s[:dot],
		Name:      s[dot+1 : paren],
		Signature: s[paren:],
	}, nil
}
