// Package decode is the type-directed decoding core: it picks a binary-layout
// decoder for an inspected value by its type name, gates every raw-memory
// traversal behind shared-buffer sanity checks, and produces either a summary
// string or a bounded lazy sequence of child elements.
//
// The package is purely observational: it never writes debuggee memory. From
// the host's point of view every operation is total — internal failures carry
// a closed set of reasons (unresolvable type, invalid reference, invalid
// size, oversized, traversal fault) and are converted to fixed placeholder
// strings at the Inspect boundary, never propagated.
package decode

import (
	"go.uber.org/zap"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
	"github.com/qtpeek/qtpeek/layout"
	"github.com/qtpeek/qtpeek/resolver"
)

// Default ceilings. Legitimate reference counts are small: thousands-scale
// counts almost certainly mean misaligned or garbage memory. The size ceiling
// trades completeness of display against interactivity of the host session.
const (
	DefaultRefLimit  = 512
	DefaultSizeLimit = 512
)

// Placeholder summaries produced at the boundary. The two are distinct so a
// user can tell a corrupt object from one that is merely too big to show.
const (
	summaryNotInitialized = "Not initialized"
	summaryTooLarge       = "Not initialized or size too large to display"
	summaryVariant        = "QVariant types printing not supported"
)

// Options tunes the engine. Zero values mean defaults.
type Options struct {
	RefLimit      int64
	SizeLimit     int64
	LayoutVersion string // framework layout profile, default "qt4"
}

func (o Options) withDefaults() Options {
	if o.RefLimit == 0 {
		o.RefLimit = DefaultRefLimit
	}
	if o.SizeLimit == 0 {
		o.SizeLimit = DefaultSizeLimit
	}
	if o.LayoutVersion == "" {
		o.LayoutVersion = layout.VersionQt4
	}
	return o
}

// Engine decodes values out of one paused process image. Safe for concurrent
// use; per-call state lives in the decoders and iterators it hands out.
type Engine struct {
	mem      qtpeek.Memory
	res      *resolver.Resolver
	arch     qtpeek.Arch
	profile  *layout.Profile
	opts     Options
	patterns []pattern
}

// NewEngine builds an engine over the host's memory and type oracle. It fails
// only when the requested layout profile is unknown: decoding with a guessed
// layout would misread memory silently.
func NewEngine(mem qtpeek.Memory, oracle qtpeek.TypeOracle, arch qtpeek.Arch, opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	profile, err := layout.NewProfile(opts.LayoutVersion, arch)
	if err != nil {
		return nil, err
	}
	return &Engine{
		mem:      mem,
		res:      resolver.New(oracle),
		arch:     arch,
		profile:  profile,
		opts:     opts,
		patterns: defaultPatterns(),
	}, nil
}

// Resolver exposes the engine's memoizing type resolver.
func (e *Engine) Resolver() *resolver.Resolver { return e.res }

// Arch reports the data model the engine decodes against.
func (e *Engine) Arch() qtpeek.Arch { return e.arch }

// DecoderFor unwraps reference and cv qualifiers from the value's type name
// and scans the pattern table in insertion order, returning the first
// matching decoder. A nil result means "not in the catalog": the host should
// fall back to its default rendering.
func (e *Engine) DecoderFor(v qtpeek.Value) Decoder {
	tag := resolver.Normalize(v.TypeName)
	if tag == "" {
		return nil
	}
	for _, p := range e.patterns {
		if p.re.MatchString(tag) {
			v.TypeName = tag
			return p.build(e, v)
		}
	}
	return nil
}

// Inspect is the dispatch entry point invoked once per value the host wants
// to display. It is total: the returned Result always carries a renderable
// summary. ok is false when the type is outside the catalog.
func (e *Engine) Inspect(v qtpeek.Value) (res qtpeek.Result, ok bool) {
	dec := e.DecoderFor(v)
	if dec == nil {
		return qtpeek.Result{}, false
	}

	summary, err := dec.Summary()
	if err != nil {
		summary = placeholderFor(err)
		Logger().Debug("summary degraded to placeholder",
			zap.String("type", v.TypeName),
			zap.Uint64("addr", v.Addr),
			zap.Error(err))
	}

	return qtpeek.Result{
		Summary:     summary,
		Hint:        dec.Hint(),
		HasChildren: dec.Expandable(),
	}, true
}

// Children enumerates the labeled child elements of a container-shaped value.
// Total: any gate failure or dispatch miss yields an empty iterator.
func (e *Engine) Children(v qtpeek.Value) *Iterator {
	dec := e.DecoderFor(v)
	if dec == nil {
		return emptyIterator()
	}
	it, err := dec.Children()
	if err != nil {
		Logger().Debug("enumeration blocked",
			zap.String("type", v.TypeName),
			zap.Uint64("addr", v.Addr),
			zap.Error(err))
		return emptyIterator()
	}
	return it
}

// placeholderFor converts a failure reason into the fixed display string.
// This is the only place the closed error taxonomy becomes user-visible text.
func placeholderFor(err error) string {
	if errors.IsKind(err, errors.KindOversized) {
		return summaryTooLarge
	}
	if errors.IsKind(err, errors.KindUnsupported) {
		return summaryVariant
	}
	return summaryNotInitialized
}

// Decoder is a stateless-per-call adapter bound to one raw value handle.
type Decoder interface {
	// Summary renders the value as a short display string. The error is one
	// of the closed failure kinds; callers above the boundary never see it.
	Summary() (string, error)

	// Children returns a fresh, bounded, non-restartable enumeration of
	// labeled child elements. Gate failures surface as errors here; the
	// boundary converts them to an empty sequence.
	Children() (*Iterator, error)

	// Expandable reports whether the decoded shape has children at all.
	Expandable() bool

	// Hint guides host rendering.
	Hint() qtpeek.Hint
}

// readPointer reads a pointer-sized value.
func (e *Engine) readPointer(addr uint64) (uint64, error) {
	return e.arch.ReadPointer(e.mem, addr)
}

// readI32 reads a signed 32-bit field, widened for range checks.
func (e *Engine) readI32(addr uint64) (int64, error) {
	v, err := e.mem.ReadU32(addr)
	if err != nil {
		return 0, err
	}
	return int64(int32(v)), nil
}

// dPointer reads the implicitly-shared d pointer every container object
// starts with.
func (e *Engine) dPointer(v qtpeek.Value) (uint64, error) {
	d, err := e.readPointer(v.Addr)
	if err != nil {
		return 0, errors.TraversalFault(errors.PhaseDecode, v.Addr, err)
	}
	if d == 0 {
		return 0, errors.New(errors.PhaseValidate, errors.KindInvalidReference).
			TypeName(v.TypeName).
			Addr(v.Addr).
			Detail("null shared-data pointer").
			Build()
	}
	return d, nil
}
