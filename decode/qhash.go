package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
	"github.com/qtpeek/qtpeek/layout"
)

// hashWalker replicates the hash table's intrusive node traversal without an
// iterator abstraction: hop along a bucket's chain while the successor has a
// successor, otherwise rehash the node's stored hash to find the next
// occupied bucket. The header address doubles as the sentinel node.
type hashWalker struct {
	e          *Engine
	sentinel   uint64
	bucketsPtr uint64
	numBuckets int64
	cur        uint64
}

// newHashWalker gates the header and positions the walker on the first node.
func (e *Engine) newHashWalker(typeName string, dAddr uint64) (*hashWalker, int64, error) {
	hd := e.profile.HashData
	if err := e.checkRef(typeName, dAddr, hd.MustOffset("ref")); err != nil {
		return nil, 0, err
	}
	size, err := e.checkSize(typeName, dAddr, hd.MustOffset("size"))
	if err != nil {
		return nil, 0, err
	}

	bucketsPtr, err := e.readPointer(dAddr + uint64(hd.MustOffset("buckets")))
	if err != nil {
		return nil, 0, errors.TraversalFault(errors.PhaseEnumerate, dAddr, err)
	}
	numBuckets, err := e.readI32(dAddr + uint64(hd.MustOffset("numBuckets")))
	if err != nil {
		return nil, 0, errors.TraversalFault(errors.PhaseEnumerate, dAddr, err)
	}
	if size > 0 && numBuckets <= 0 {
		return nil, 0, errors.InvalidData(errors.PhaseEnumerate,
			[]string{typeName}, "hash with elements but no buckets")
	}

	w := &hashWalker{
		e:          e,
		sentinel:   dAddr,
		bucketsPtr: bucketsPtr,
		numBuckets: numBuckets,
	}
	if size > 0 {
		if w.cur, err = w.scanBuckets(0); err != nil {
			return nil, 0, err
		}
	} else {
		w.cur = dAddr
	}
	return w, size, nil
}

// scanBuckets returns the first bucket head from index start that is not the
// sentinel, or the sentinel when every remaining bucket is empty.
func (w *hashWalker) scanBuckets(start int64) (uint64, error) {
	ptrSize := uint64(w.e.arch.PointerSize)
	for i := start; i < w.numBuckets; i++ {
		b, err := w.e.readPointer(w.bucketsPtr + uint64(i)*ptrSize)
		if err != nil {
			return 0, errors.TraversalFault(errors.PhaseEnumerate, w.bucketsPtr, err)
		}
		if b != w.sentinel {
			return b, nil
		}
	}
	return w.sentinel, nil
}

// atEnd reports whether the walker has reached the sentinel.
func (w *hashWalker) atEnd() bool {
	return w.cur == w.sentinel || w.cur == 0
}

// advance moves to the next node: stay within the current chain while its
// successor links onward, else continue at the bucket after the one this
// node's hash maps to.
func (w *hashWalker) advance() error {
	hOff := uint64(w.e.profile.HashNodeHeader.MustOffset("h"))

	next, err := w.e.readPointer(w.cur)
	if err != nil {
		return errors.TraversalFault(errors.PhaseEnumerate, w.cur, err)
	}
	if next == 0 {
		w.cur = w.sentinel
		return nil
	}
	nextNext, err := w.e.readPointer(next)
	if err != nil {
		return errors.TraversalFault(errors.PhaseEnumerate, next, err)
	}
	if nextNext != 0 {
		w.cur = next
		return nil
	}

	h, err := w.e.mem.ReadU32(w.cur + hOff)
	if err != nil {
		return errors.TraversalFault(errors.PhaseEnumerate, w.cur, err)
	}
	start := int64(h)%w.numBuckets + 1
	w.cur, err = w.scanBuckets(start)
	return err
}

// hashDecoder enumerates a QHash or QMultiHash, alternating key and value
// children per node exactly as the ordered map does.
type hashDecoder struct {
	e         *Engine
	val       qtpeek.Value
	container string
	keyName   string
	valName   string
}

func (d *hashDecoder) Summary() (string, error) {
	if isVariantName(d.valName) {
		return "", errVariantUnsupported
	}
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
	return containerSummary(d.container, d.keyName+", "+d.valName, size), nil
}

func (d *hashDecoder) Children() (*Iterator, error) {
	if isVariantName(d.valName) {
		return nil, errVariantUnsupported
	}
	dAddr, err := d.e.dPointer(d.val)
	if err != nil {
		return nil, err
	}
	walker, size, err := d.e.newHashWalker(d.val.TypeName, dAddr)
	if err != nil {
		return nil, err
	}

	key, err := d.e.elemInfo(d.keyName)
	if err != nil {
		return nil, err
	}
	val, err := d.e.elemInfo(d.valName)
	if err != nil {
		return nil, err
	}
	keyOff := uint64(d.e.profile.HashKeyOffset(key.align))
	valOff := uint64(layout.AlignTo(uint32(keyOff)+uint32(key.size), val.align))

	maxEntries := size * 2
	i := int64(0)
	var pending error
	return newIterator(d.e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if pending != nil {
			return qtpeek.Child{}, pending, false
		}
		if i >= maxEntries || walker.atEnd() {
			return qtpeek.Child{}, nil, false
		}

		node := walker.cur
		var child qtpeek.Child
		if i%2 == 0 {
			child = qtpeek.Child{
				Label: indexLabel(i),
				Value: qtpeek.Value{TypeName: key.name, Addr: node + keyOff},
			}
		} else {
			child = qtpeek.Child{
				Label: indexLabel(i),
				Value: qtpeek.Value{TypeName: val.name, Addr: node + valOff},
			}
			if err := walker.advance(); err != nil {
				pending = err
			}
		}
		i++
		return child, nil, true
	}), nil
}

func (d *hashDecoder) Expandable() bool  { return true }
func (d *hashDecoder) Hint() qtpeek.Hint { return qtpeek.HintMap }
