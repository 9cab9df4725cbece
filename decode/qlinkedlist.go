package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// linkedListDecoder walks a QLinkedList's next-pointer chain, starting at the
// sentinel's successor. The element count comes from the shared header, never
// from chain traversal: the chain is circular through the sentinel and a
// corrupt node could otherwise walk forever.
type linkedListDecoder struct {
	e        *Engine
	val      qtpeek.Value
	elemName string
}

func (d *linkedListDecoder) header() (dAddr uint64, size int64, err error) {
	e := d.e
	dAddr, err = e.dPointer(d.val)
	if err != nil {
		return 0, 0, err
	}
	lld := e.profile.LinkedListData
	if err := e.checkRef(d.val.TypeName, dAddr, lld.MustOffset("ref")); err != nil {
		return 0, 0, err
	}
	size, err = e.checkSize(d.val.TypeName, dAddr, lld.MustOffset("size"))
	if err != nil {
		return 0, 0, err
	}
	return dAddr, size, nil
}

func (d *linkedListDecoder) Summary() (string, error) {
	_, size, err := d.header()
	if err != nil {
		return "", err
	}
	return containerSummary("QLinkedList", d.elemName, size), nil
}

func (d *linkedListDecoder) Children() (*Iterator, error) {
	dAddr, size, err := d.header()
	if err != nil {
		return nil, err
	}
	elem, err := d.e.elemInfo(d.elemName)
	if err != nil {
		return nil, err
	}

	e := d.e
	node := e.profile.LinkedListNode
	nextOff := uint64(node.MustOffset("n"))
	elemOff := uint64(e.profile.LinkedListElemOffset(elem.align))

	// The header doubles as the sentinel node; its successor is the first
	// real element.
	cur, err := e.readPointer(dAddr + nextOff)
	if err != nil {
		return nil, errors.TraversalFault(errors.PhaseEnumerate, dAddr, err)
	}

	i := int64(0)
	var pending error
	return newIterator(e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if pending != nil {
			return qtpeek.Child{}, pending, false
		}
		if i >= size || cur == 0 {
			return qtpeek.Child{}, nil, false
		}
		child := qtpeek.Child{
			Label: indexLabel(i),
			Value: qtpeek.Value{TypeName: elem.name, Addr: cur + elemOff},
		}
		// Advance eagerly but surface a fault only on the next call, so the
		// element already produced is not lost.
		if next, err := e.readPointer(cur + nextOff); err != nil {
			pending = errors.TraversalFault(errors.PhaseEnumerate, cur, err)
		} else {
			cur = next
		}
		i++
		return child, nil, true
	}), nil
}

func (d *linkedListDecoder) Expandable() bool  { return true }
func (d *linkedListDecoder) Hint() qtpeek.Hint { return qtpeek.HintNone }
