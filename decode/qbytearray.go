package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// byteArrayDecoder renders a QByteArray's payload as a display string and
// exposes index-keyed enumeration of the raw byte values.
type byteArrayDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *byteArrayDecoder) header() (dAddr uint64, size int64, err error) {
	e := d.e
	dAddr, err = e.dPointer(d.val)
	if err != nil {
		return 0, 0, err
	}
	sd := e.profile.SharedData
	if err := e.checkRef(d.val.TypeName, dAddr, sd.MustOffset("ref")); err != nil {
		return 0, 0, err
	}
	size, err = e.checkSize(d.val.TypeName, dAddr, sd.MustOffset("size"))
	if err != nil {
		return 0, 0, err
	}
	return dAddr, size, nil
}

func (d *byteArrayDecoder) Summary() (string, error) {
	dAddr, size, err := d.header()
	if err != nil {
		return "", err
	}
	if size == 0 {
		return `""`, nil
	}

	dataPtr, err := d.e.readPointer(dAddr + uint64(d.e.profile.SharedData.MustOffset("data")))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dAddr, err)
	}
	raw, err := d.e.mem.Read(dataPtr, uint64(size))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dataPtr, err)
	}
	return "\"" + string(raw) + "\"", nil
}

func (d *byteArrayDecoder) Children() (*Iterator, error) {
	dAddr, size, err := d.header()
	if err != nil {
		return nil, err
	}
	dataPtr, err := d.e.readPointer(dAddr + uint64(d.e.profile.SharedData.MustOffset("data")))
	if err != nil {
		return nil, errors.TraversalFault(errors.PhaseEnumerate, dAddr, err)
	}

	i := int64(0)
	return newIterator(d.e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if i >= size {
			return qtpeek.Child{}, nil, false
		}
		child := qtpeek.Child{
			Label: indexLabel(i),
			Value: qtpeek.Value{TypeName: "char", Addr: dataPtr + uint64(i)},
		}
		i++
		return child, nil, true
	}), nil
}

func (d *byteArrayDecoder) Expandable() bool  { return true }
func (d *byteArrayDecoder) Hint() qtpeek.Hint { return qtpeek.HintString }
