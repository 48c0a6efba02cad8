package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseDeclare Phase = "declare" // capability declaration
	PhaseBuild   Phase = "build"   // host descriptor construction
	PhaseLoad    Phase = "load"    // guest module decoding
	PhaseResolve Phase = "resolve" // import resolution
	PhaseLink    Phase = "link"    // link module and guest instantiation
	PhaseCall    Phase = "call"    // capability invocation
	PhaseMemory  Phase = "memory"  // guest memory access
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicate     Kind = "duplicate"
	KindUnsupported   Kind = "unsupported"
	KindArity         Kind = "arity"
	KindMissingImport Kind = "missing_import"
	KindTypeMismatch  Kind = "type_mismatch"
	KindMissingMemory Kind = "missing_memory"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindInvalidData   Kind = "invalid_data"
	KindInvalidInput  Kind = "invalid_input"
	KindInstantiation Kind = "instantiation"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string // native Go signature or type, when known
	AbiType string // word type, when known
	Detail  string
	Path    []string
}

// Error renders "[phase] kind at a.b: Go type T, ABI type i32 - detail (caused by: ...)".
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Phase, e.Kind)
	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	var types []string
	if e.GoType != "" {
		types = append(types, "Go type "+e.GoType)
	}
	if e.AbiType != "" {
		types = append(types, "ABI type "+e.AbiType)
	}
	var parts []string
	if len(types) > 0 {
		parts = append(parts, strings.Join(types, ", "))
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, " - "))
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %s)", e.Cause)
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

// Path sets the element path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the native Go type or signature
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// AbiType sets the ABI word type name
func (b *Builder) AbiType(t string) *Builder {
	b.err.AbiType = t
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

// Duplicate creates a duplicate declaration error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Path:   []string{name},
		Detail: fmt.Sprintf("%s %q declared more than once", what, name),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, want, got string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// OutOfBounds creates an out of bounds error for a guest-supplied range
func OutOfBounds(phase Phase, path []string, offset, length uint32, size int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("range [%d, %d) exceeds memory size %d", offset, uint64(offset)+uint64(length), size),
	}
}

// MissingMemory creates an error for an instance without a memory export
func MissingMemory(module, exportName string) *Error {
	return &Error{
		Phase:  PhaseMemory,
		Kind:   KindMissingMemory,
		Path:   []string{module},
		Detail: fmt.Sprintf("no memory export named %q", exportName),
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

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Instantiation creates an instantiation error
func Instantiation(phase Phase, module string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInstantiation,
		Detail: fmt.Sprintf("instantiate %s", module),
		Cause:  cause,
	}
}

// Load creates a guest module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// UnresolvedImportError names the guest import that no candidate export set
// could satisfy.
type UnresolvedImportError struct {
	Namespace string // e.g., "env"
	Name      string // e.g., "debug_print"
	Key       string // qualified lookup key, e.g., "env_debug_print"
	Index     int    // position in the guest's import declarations
}

func (e *UnresolvedImportError) Error() string {
	return fmt.Sprintf("unresolved import %d: %s.%s (looked up as %q)", e.Index, e.Namespace, e.Name, e.Key)
}

// Is reports whether target matches this error type
func (e *UnresolvedImportError) Is(target error) bool {
	_, ok := target.(*UnresolvedImportError)
	return ok
}

// Unresolved creates a resolution error for a single unresolved import.
func Unresolved(index int, namespace, name, key string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMissingImport,
		Path:   []string{namespace, name},
		Detail: "no host export matches",
		Cause: &UnresolvedImportError{
			Namespace: namespace,
			Name:      name,
			Key:       key,
			Index:     index,
		},
	}
}
