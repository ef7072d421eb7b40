package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseScan     Phase = "scan"     // type registration while scanning method bodies
	PhaseResolve  Phase = "resolve"  // hierarchy resolution
	PhaseFinalize Phase = "finalize" // freezing the registry and writing types
	PhaseEncode   Phase = "encode"   // metadata blob and module encoding
	PhaseDecode   Phase = "decode"   // metadata blob decoding
	PhaseLoad     Phase = "load"     // class metadata loading
	PhaseProbe    Phase = "probe"    // executing generated code
)

// Kind categorizes the error
type Kind string

const (
	KindLateRegistration Kind = "late_registration"
	KindMissingClass     Kind = "missing_class"
	KindInvalidState     Kind = "invalid_state"
	KindInvalidData      Kind = "invalid_data"
	KindInvalidInput     Kind = "invalid_input"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindNotFound         Kind = "not_found"
	KindUnsupported      Kind = "unsupported"
	KindWriter           Kind = "writer"
	KindInstantiation    Kind = "instantiation"
)

// Sentinels for errors.Is. Matching compares phase and kind only.
var (
	ErrLateRegistration = &Error{Phase: PhaseFinalize, Kind: KindLateRegistration}
	ErrMissingClass     = &Error{Phase: PhaseResolve, Kind: KindMissingClass}
	ErrAlreadyFinalized = &Error{Phase: PhaseFinalize, Kind: KindInvalidState}
	ErrInstantiation    = &Error{Phase: PhaseProbe, Kind: KindInstantiation}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Class    string
	WasmType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	hasType := e.Class != "" || e.WasmType != ""
	if hasType {
		b.WriteString(": ")
		switch {
		case e.Class != "" && e.WasmType != "":
			b.WriteString("class ")
			b.WriteString(e.Class)
			b.WriteString(", wasm type ")
			b.WriteString(e.WasmType)
		case e.Class != "":
			b.WriteString("class ")
			b.WriteString(e.Class)
		default:
			b.WriteString("wasm type ")
			b.WriteString(e.WasmType)
		}
	}

	if e.Detail != "" {
		if hasType {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the member path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Class sets the class name
func (b *Builder) Class(name string) *Builder {
	b.err.Class = name
	return b
}

// WasmType sets the wasm type name
func (b *Builder) WasmType(t string) *Builder {
	b.err.WasmType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// LateRegistration reports a type requested for the first time after the
// registry was frozen. what is "struct" or "array".
func LateRegistration(what, name string) *Error {
	return &Error{
		Phase:  PhaseFinalize,
		Kind:   KindLateRegistration,
		Class:  name,
		Detail: fmt.Sprintf("register needed %s type after scanning: %s", what, name),
	}
}

// MissingClass reports a class the loader could not resolve.
func MissingClass(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMissingClass,
		Class:  name,
		Detail: fmt.Sprintf("missing class: %s", name),
		Cause:  cause,
	}
}

// AlreadyFinalized reports a second finalization of the same registry.
func AlreadyFinalized() *Error {
	return &Error{
		Phase:  PhaseFinalize,
		Kind:   KindInvalidState,
		Detail: "type registry already finalized",
	}
}

// NotFinalized reports an operation that needs resolved layouts.
func NotFinalized(what string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("%s requires a finalized type registry", what),
	}
}

// Writer wraps a failure of the target writer for a class.
func Writer(class string, cause error) *Error {
	return &Error{
		Phase:  PhaseFinalize,
		Kind:   KindWriter,
		Class:  class,
		Detail: "write struct type",
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseProbe,
		Kind:   KindInstantiation,
		Detail: "instantiate probe module",
		Cause:  cause,
	}
}

// Load creates a class metadata loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
