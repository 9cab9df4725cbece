// Package resolver maps inspected type names to cached layout metadata.
//
// Lookups go to the host's TypeOracle once per distinct name and are memoized
// process-wide, including failures: a name the host cannot resolve is cached
// as unresolvable so the expensive miss is paid once. The catalog of distinct
// names seen in one debugging session is small, so the cache never evicts.
package resolver

import (
	"strings"
	"sync"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// Type is the canonical description of a resolved type: its tag name, size,
// and, for templates, its ordered template arguments. Immutable once cached.
type Type struct {
	Name     string
	Template string // "QMap" for "QMap<int, QString>", "" for non-templates
	Args     []string
	Size     uint64
}

// IsTemplate reports whether the type carries template arguments.
func (t *Type) IsTemplate() bool { return t.Template != "" }

// Arg returns the i-th template argument, or "" when absent.
func (t *Type) Arg(i int) string {
	if i < 0 || i >= len(t.Args) {
		return ""
	}
	return t.Args[i]
}

// Resolver resolves and caches type metadata. Safe for concurrent use.
type Resolver struct {
	oracle qtpeek.TypeOracle
	mu     sync.Mutex
	cache  map[string]*Type // nil value = cached as unresolvable
}

// New returns a Resolver backed by the host's type oracle.
func New(oracle qtpeek.TypeOracle) *Resolver {
	return &Resolver{
		oracle: oracle,
		cache:  make(map[string]*Type),
	}
}

// Resolve maps a type name to its cached metadata. The literal name "void" is
// always resolvable. Names containing an anonymous-namespace marker are always
// unresolvable: the host parser cannot round-trip them.
func (r *Resolver) Resolve(name string) (*Type, error) {
	name = Normalize(name)
	if name == "" {
		return nil, errors.Unresolvable(errors.PhaseResolve, name)
	}

	r.mu.Lock()
	cached, ok := r.cache[name]
	r.mu.Unlock()
	if ok {
		if cached == nil {
			return nil, errors.Unresolvable(errors.PhaseResolve, name)
		}
		return cached, nil
	}

	t := r.lookup(name)
	r.mu.Lock()
	r.cache[name] = t
	r.mu.Unlock()

	if t == nil {
		return nil, errors.Unresolvable(errors.PhaseResolve, name)
	}
	return t, nil
}

func (r *Resolver) lookup(name string) *Type {
	if strings.Contains(name, "(anon") {
		return nil
	}

	if name == "void" {
		size := uint64(1)
		if s, ok := r.oracle.SizeOf(name); ok {
			size = s
		}
		return &Type{Name: name, Size: size}
	}

	size, ok := r.oracle.SizeOf(name)
	if !ok {
		return nil
	}

	tmpl, args := SplitTemplate(name)
	return &Type{Name: name, Template: tmpl, Args: args, Size: size}
}

// FieldOffset exposes the oracle's optional structural field lookup.
func (r *Resolver) FieldOffset(typeName, fieldName string) (uint64, bool) {
	return r.oracle.FieldOffset(typeName, fieldName)
}

// Normalize strips reference indirection and cv-qualifiers from a type name,
// yielding the bare tag name used for dispatch.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	for {
		switch {
		case strings.HasPrefix(name, "const "):
			name = name[len("const "):]
		case strings.HasPrefix(name, "volatile "):
			name = name[len("volatile "):]
		case strings.HasSuffix(name, "&"):
			name = strings.TrimSpace(name[:len(name)-1])
		default:
			return name
		}
	}
}

// SplitTemplate splits "QMap<int, QList<QString> >" into its template name and
// argument list. Splitting is nesting-aware; a non-template name yields
// ("", nil).
func SplitTemplate(name string) (string, []string) {
	open := strings.IndexByte(name, '<')
	if open < 0 || !strings.HasSuffix(name, ">") {
		return "", nil
	}

	inner := name[open+1 : len(name)-1]
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return name[:open], args
}
