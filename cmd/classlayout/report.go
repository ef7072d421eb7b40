package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-classlayout/typemgr"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#90EE90"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// palette renders report fragments, plain when output is not a terminal.
type palette struct {
	styled bool
}

func (p palette) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func writeReport(w io.Writer, res *result, styled bool) {
	p := palette{styled: styled}

	summary := fmt.Sprintf("%d structs, %d arrays, module %d bytes, metadata %d bytes",
		len(res.reg.Structs()), len(res.reg.Arrays()), len(res.out.Binary), res.out.Metadata.Len())
	fmt.Fprintln(w, p.render(titleStyle, "Class layout"), summary)
	if res.verified {
		fmt.Fprintln(w, p.render(okStyle, "metadata verified"))
	}
	fmt.Fprintln(w)

	for _, st := range res.reg.Structs() {
		fmt.Fprint(w, describeStruct(p, st, res.fm))
		fmt.Fprintln(w)
	}
	for _, at := range res.reg.Arrays() {
		fmt.Fprintf(w, "%s %s code %d\n", p.render(dimStyle, "array"), p.render(nameStyle, at.String()), at.Code())
	}
}

func describeStruct(p palette, st *typemgr.StructType, functions typemgr.FunctionManager) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s code %d class %d vtable @%d\n",
		p.render(dimStyle, "struct"), p.render(nameStyle, st.String()), st.Code(), st.ClassIndex(), st.VTableOffset())
	if parent := st.Parent(); parent != nil {
		fmt.Fprintf(&b, "  parent %s\n", p.render(nameStyle, parent.String()))
	}

	b.WriteString("  fields\n")
	for i, f := range st.Fields() {
		name := f.Owner + "." + f.Name
		if f.IsVTable() {
			name = f.Name
		}
		fmt.Fprintf(&b, "    %2d %s %s\n", i, name, p.render(typeStyle, f.Descriptor))
	}

	b.WriteString("  methods\n")
	for i, m := range st.Methods() {
		fmt.Fprintf(&b, "    %2d %s -> #%d\n", i+typemgr.VTableFirstFunctionIndex, m, functions.FunctionID(m))
	}

	names := make([]string, 0, len(st.InstanceOfs()))
	for _, t := range st.InstanceOfs() {
		names = append(names, t.Name())
	}
	fmt.Fprintf(&b, "  instanceof %s\n", strings.Join(names, ", "))
	return b.String()
}
