package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve   Phase = "resolve"   // type-name resolution
	PhaseDispatch  Phase = "dispatch"  // decoder selection
	PhaseValidate  Phase = "validate"  // shared-buffer header gates
	PhaseDecode    Phase = "decode"    // summary production
	PhaseEnumerate Phase = "enumerate" // child enumeration
	PhaseSnapshot  Phase = "snapshot"  // memory-image loading
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindUnresolvableType Kind = "unresolvable_type"
	KindInvalidReference Kind = "invalid_reference"
	KindInvalidSize      Kind = "invalid_size"
	KindOversized        Kind = "oversized"
	KindTraversalFault   Kind = "traversal_fault"
	KindLayoutMismatch   Kind = "layout_mismatch"
	KindUnsupported      Kind = "unsupported"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindInvalidData      Kind = "invalid_data"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
	Addr     uint64
	HasAddr  bool
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

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.HasAddr {
		fmt.Fprintf(&b, " @ 0x%x", e.Addr)
	}

	if e.Detail != "" {
		if e.TypeName != "" || e.HasAddr {
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

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// TypeName sets the inspected type name
func (b *Builder) TypeName(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Addr sets the debuggee address the error refers to
func (b *Builder) Addr(addr uint64) *Builder {
	b.err.Addr = addr
	b.err.HasAddr = true
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

// Unresolvable creates an unresolvable-type error
func Unresolvable(phase Phase, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindUnresolvableType,
		TypeName: typeName,
		Detail:   "type name cannot be resolved",
	}
}

// InvalidReference creates a reference-count gate failure
func InvalidReference(phase Phase, typeName string, addr uint64, count int64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidReference,
		TypeName: typeName,
		Addr:     addr,
		HasAddr:  true,
		Detail:   fmt.Sprintf("reference count %d is not plausible", count),
	}
}

// InvalidSize creates a negative-size gate failure
func InvalidSize(phase Phase, typeName string, addr uint64, size int64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindInvalidSize,
		TypeName: typeName,
		Addr:     addr,
		HasAddr:  true,
		Detail:   fmt.Sprintf("element count %d is negative", size),
	}
}

// Oversized creates a display-ceiling gate failure
func Oversized(phase Phase, typeName string, addr uint64, size, limit int64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindOversized,
		TypeName: typeName,
		Addr:     addr,
		HasAddr:  true,
		Detail:   fmt.Sprintf("element count %d exceeds display ceiling %d", size, limit),
	}
}

// TraversalFault wraps a raw-memory read failure during enumeration
func TraversalFault(phase Phase, addr uint64, cause error) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTraversalFault,
		Addr:    addr,
		HasAddr: true,
		Detail:  "memory read failed mid-traversal",
		Cause:   cause,
	}
}

// LayoutMismatch creates a layout feature-gate failure
func LayoutMismatch(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLayoutMismatch,
		Detail: what,
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

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, addr uint64, length uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutOfBounds,
		Addr:    addr,
		HasAddr: true,
		Detail:  fmt.Sprintf("read of %d bytes is out of mapped range", length),
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

// NotFound creates a not-found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what,
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
