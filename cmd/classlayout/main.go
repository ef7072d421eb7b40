package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/wasm-classlayout/classfile"
	"github.com/wippyai/wasm-classlayout/funcmgr"
	"github.com/wippyai/wasm-classlayout/modwriter"
	"github.com/wippyai/wasm-classlayout/probe"
	"github.com/wippyai/wasm-classlayout/typemgr"
)

type options struct {
	classes   string
	output    string
	root      string
	firstID   int
	verify    bool
	verbose   bool
	noNames   bool
	immutable bool
}

func main() {
	var opts options
	flag.StringVar(&opts.classes, "classes", "", "Path to class hierarchy JSON (- for stdin)")
	flag.StringVar(&opts.output, "o", "", "Write the encoded module to this file")
	flag.StringVar(&opts.root, "root", classfile.ObjectClass, "Root class of the hierarchy")
	flag.IntVar(&opts.firstID, "first-id", 0, "Function id of the first needed method")
	flag.BoolVar(&opts.verify, "verify", false, "Replay dispatch against the metadata in wazero")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	flag.BoolVar(&opts.noNames, "no-names", false, "Omit the name section")
	flag.BoolVar(&opts.immutable, "immutable", false, "Declare instance fields immutable")
	interactive := flag.Bool("i", false, "Interactive mode with TUI")
	flag.Parse()

	if opts.classes == "" {
		fmt.Fprintln(os.Stderr, "Usage: classlayout -classes <hierarchy.json> [-o out.wasm] [-verify] [-v]")
		fmt.Fprintln(os.Stderr, "       classlayout -classes <hierarchy.json> -i  (interactive mode)")
		os.Exit(1)
	}

	if opts.verbose {
		log, err := zap.NewDevelopment()
		if err == nil {
			typemgr.SetLogger(log)
			funcmgr.SetLogger(log)
			modwriter.SetLogger(log)
			probe.SetLogger(log)
			defer func() { _ = log.Sync() }()
		}
	}

	res, err := compile(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(opts.classes, res); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	writeReport(os.Stdout, res, styled)
}

type result struct {
	reg      *typemgr.Registry
	fm       *funcmgr.Manager
	out      *modwriter.Output
	verified bool
}

func compile(ctx context.Context, opts options) (*result, error) {
	doc, err := readDocument(opts.classes)
	if err != nil {
		return nil, err
	}

	reg := typemgr.New(typemgr.Options{RootClass: opts.root})
	fm := funcmgr.NewWithOffset(int32(opts.firstID))

	// The root goes first so every struct can name its wasm supertype.
	if _, err := reg.CallVirtual(); err != nil {
		return nil, err
	}
	for _, name := range doc.RegistrationOrder() {
		if _, err := reg.StructOf(name); err != nil {
			return nil, err
		}
	}
	classes := make([]string, 0, len(doc.UsedFields))
	for class := range doc.UsedFields {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		for _, f := range doc.UsedFields[class] {
			if err := reg.MarkFieldUsed(class, f); err != nil {
				return nil, err
			}
		}
	}
	for _, desc := range doc.Arrays {
		if _, err := reg.TypeOf("[" + desc); err != nil {
			return nil, err
		}
	}
	invoked, err := doc.InvokedMethods()
	if err != nil {
		return nil, err
	}
	for _, ref := range invoked {
		fm.MarkNeeded(ref)
	}

	wopts := modwriter.DefaultOptions()
	wopts.NameSection = !opts.noNames
	wopts.MutableFields = !opts.immutable
	out, err := modwriter.Build(reg, fm, doc.Loader(), wopts)
	if err != nil {
		return nil, err
	}

	res := &result{reg: reg, fm: fm, out: out}
	if opts.verify {
		p, err := probe.New(ctx, out.Metadata.Bytes())
		if err != nil {
			return nil, err
		}
		defer p.Close(ctx)
		if err := p.Verify(ctx, reg, fm); err != nil {
			return nil, err
		}
		res.verified = true
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out.Binary, 0o644); err != nil {
			return nil, fmt.Errorf("write module: %w", err)
		}
	}
	return res, nil
}

func readDocument(path string) (*classfile.Document, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read classes: %w", err)
		}
		defer f.Close()
		r = f
	}
	return classfile.DecodeDocument(r)
}
