package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
	"github.com/qtpeek/qtpeek/layout"
)

// mapDecoder walks an ordered map's skip-list nodes. The header's node
// pointers address the linkage portion of each node; the key/value payload
// sits immediately before it, so the payload start is recovered by
// subtracting the node size minus the linkage size, with the node size
// supplied by the host type system.
type mapDecoder struct {
	e         *Engine
	val       qtpeek.Value
	container string
	keyName   string
	valName   string
}

func (d *mapDecoder) header() (dAddr uint64, size int64, err error) {
	e := d.e
	dAddr, err = e.dPointer(d.val)
	if err != nil {
		return 0, 0, err
	}
	md := e.profile.MapData
	if err := e.checkRef(d.val.TypeName, dAddr, md.MustOffset("ref")); err != nil {
		return 0, 0, err
	}
	size, err = e.checkSize(d.val.TypeName, dAddr, md.MustOffset("size"))
	if err != nil {
		return 0, 0, err
	}
	return dAddr, size, nil
}

func (d *mapDecoder) Summary() (string, error) {
	if isVariantName(d.valName) {
		return "", errVariantUnsupported
	}
	_, size, err := d.header()
	if err != nil {
		return "", err
	}
	return containerSummary(d.container, d.keyName+", "+d.valName, size), nil
}

func (d *mapDecoder) Children() (*Iterator, error) {
	if isVariantName(d.valName) {
		return nil, errVariantUnsupported
	}
	dAddr, size, err := d.header()
	if err != nil {
		return nil, err
	}

	e := d.e
	key, err := e.elemInfo(d.keyName)
	if err != nil {
		return nil, err
	}
	val, err := e.elemInfo(d.valName)
	if err != nil {
		return nil, err
	}

	// sizeof(QMapNode<K, V>) minus the linkage gives the payload size the
	// node pointer sits behind.
	nodeType, err := e.res.Resolve("QMapNode<" + d.keyName + ", " + d.valName + ">")
	if err != nil {
		return nil, err
	}
	if nodeType.Size < uint64(e.profile.MapLinkageSize) {
		return nil, errors.InvalidData(errors.PhaseEnumerate,
			[]string{d.val.TypeName}, "map node smaller than its linkage")
	}
	payload := nodeType.Size - uint64(e.profile.MapLinkageSize)
	valOff := uint64(layout.AlignTo(uint32(key.size), val.align))

	forwardOff := uint64(e.profile.MapData.MustOffset("forward0"))
	cur, err := e.readPointer(dAddr + forwardOff)
	if err != nil {
		return nil, errors.TraversalFault(errors.PhaseEnumerate, dAddr, err)
	}

	ptrSize := uint64(e.arch.PointerSize)
	maxEntries := size * 2
	i := int64(0)
	var pending error
	return newIterator(e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if pending != nil {
			return qtpeek.Child{}, pending, false
		}
		// The header doubles as the sentinel; reaching it ends the walk.
		if i >= maxEntries || cur == dAddr || cur == 0 {
			return qtpeek.Child{}, nil, false
		}

		concrete := cur - payload
		var child qtpeek.Child
		if i%2 == 0 {
			child = qtpeek.Child{
				Label: indexLabel(i),
				Value: qtpeek.Value{TypeName: key.name, Addr: concrete},
			}
		} else {
			child = qtpeek.Child{
				Label: indexLabel(i),
				Value: qtpeek.Value{TypeName: val.name, Addr: concrete + valOff},
			}
			// Advance only after the pair is complete so key and value
			// always refer to the same node.
			if next, err := e.readPointer(cur + ptrSize); err != nil {
				pending = errors.TraversalFault(errors.PhaseEnumerate, cur, err)
			} else {
				cur = next
			}
		}
		i++
		return child, nil, true
	}), nil
}

func (d *mapDecoder) Expandable() bool  { return true }
func (d *mapDecoder) Hint() qtpeek.Hint { return qtpeek.HintMap }
