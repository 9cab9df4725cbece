package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
)

// setDecoder is the hash decoder restricted to key-only iteration: a QSet is
// a hash table whose value slot is a zero-size dummy, and it starts at the
// same address, so the bucket traversal is reused verbatim.
type setDecoder struct {
	e        *Engine
	val      qtpeek.Value
	elemName string
}

func (d *setDecoder) Summary() (string, error) {
	dAddr, err := d.e.dPointer(d.val)
	if err != nil {
		return "", err
	}
	hd := d.e.profile.HashData
	if err := d.e.checkRef(d.val.TypeName, dAddr, hd.MustOffset("ref")); err != nil {
		return "", err
	}
	size, err := d.e.checkSize(d.val.TypeName, dAddr, hd.MustOffset("size"))
	if err != nil {
		return "", err
	}
	return containerSummary("QSet", d.elemName, size), nil
}

func (d *setDecoder) Children() (*Iterator, error) {
	dAddr, err := d.e.dPointer(d.val)
	if err != nil {
		return nil, err
	}
	walker, size, err := d.e.newHashWalker(d.val.TypeName, dAddr)
	if err != nil {
		return nil, err
	}
	key, err := d.e.elemInfo(d.elemName)
	if err != nil {
		return nil, err
	}
	keyOff := uint64(d.e.profile.HashKeyOffset(key.align))

	i := int64(0)
	var pending error
	return newIterator(d.e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if pending != nil {
			return qtpeek.Child{}, pending, false
		}
		if i >= size || walker.atEnd() {
			return qtpeek.Child{}, nil, false
		}
		child := qtpeek.Child{
			Label: indexLabel(i),
			Value: qtpeek.Value{TypeName: key.name, Addr: walker.cur + keyOff},
		}
		if err := walker.advance(); err != nil {
			pending = err
		}
		i++
		return child, nil, true
	}), nil
}

func (d *setDecoder) Expandable() bool  { return true }
func (d *setDecoder) Hint() qtpeek.Hint { return qtpeek.HintNone }
