package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// vectorDecoder enumerates the flat typed array behind a QVector or QStack:
// no per-element indirection, just an index bound from the size field.
type vectorDecoder struct {
	e         *Engine
	val       qtpeek.Value
	container string
	elemName  string
}

func (d *vectorDecoder) header() (dAddr uint64, size int64, err error) {
	e := d.e
	dAddr, err = e.dPointer(d.val)
	if err != nil {
		return 0, 0, err
	}
	vd := e.profile.VectorData
	if err := e.checkRef(d.val.TypeName, dAddr, vd.MustOffset("ref")); err != nil {
		return 0, 0, err
	}
	size, err = e.checkSize(d.val.TypeName, dAddr, vd.MustOffset("size"))
	if err != nil {
		return 0, 0, err
	}
	return dAddr, size, nil
}

func (d *vectorDecoder) Summary() (string, error) {
	if isVariantName(d.elemName) {
		return "", errVariantUnsupported
	}
	_, size, err := d.header()
	if err != nil {
		return "", err
	}
	return containerSummary(d.container, d.elemName, size), nil
}

func (d *vectorDecoder) Children() (*Iterator, error) {
	if isVariantName(d.elemName) {
		return nil, errVariantUnsupported
	}
	dAddr, size, err := d.header()
	if err != nil {
		return nil, err
	}
	elem, err := d.e.elemInfo(d.elemName)
	if err != nil {
		return nil, err
	}
	if elem.stride == 0 {
		return nil, errors.InvalidData(errors.PhaseEnumerate,
			[]string{d.val.TypeName}, "zero-size element type")
	}

	arrayBase := dAddr + uint64(d.e.profile.VectorArrayOffset(elem.align))
	i := int64(0)
	return newIterator(d.e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if i >= size {
			return qtpeek.Child{}, nil, false
		}
		child := qtpeek.Child{
			Label: indexLabel(i),
			Value: qtpeek.Value{TypeName: elem.name, Addr: arrayBase + uint64(i)*elem.stride},
		}
		i++
		return child, nil, true
	}), nil
}

func (d *vectorDecoder) Expandable() bool  { return true }
func (d *vectorDecoder) Hint() qtpeek.Hint { return qtpeek.HintNone }
