package decode

import (
	"unicode/utf16"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// charDecoder renders a single UCS-2 code unit. Surrogate halves cannot be
// shown on their own and decode as uninitialized rather than propagating.
type charDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *charDecoder) Summary() (string, error) {
	ucs, err := d.e.mem.ReadU16(d.val.Addr)
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, d.val.Addr, err)
	}
	r := rune(ucs)
	if utf16.IsSurrogate(r) {
		return "", errors.InvalidData(errors.PhaseDecode, []string{d.val.TypeName},
			"lone surrogate code unit")
	}
	return "'" + string(r) + "'", nil
}

func (d *charDecoder) Children() (*Iterator, error) { return emptyIterator(), nil }
func (d *charDecoder) Expandable() bool             { return false }
func (d *charDecoder) Hint() qtpeek.Hint            { return qtpeek.HintString }
