package decode

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// urlDecoder reads the original encoded form stored inside QUrlPrivate.
// When the host has structural debug info the field offset comes from it;
// otherwise the offset is recomputed from the sizes of the preceding fields
// in declaration order. The fallback breaks if the private struct's field
// order ever changes, which is why the layout lives in a versioned profile.
type urlDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *urlDecoder) Summary() (string, error) {
	e := d.e
	dAddr, err := e.dPointer(d.val)
	if err != nil {
		return "", err
	}

	up := e.profile.URLPrivate
	if err := e.checkRef(d.val.TypeName, dAddr, up.MustOffset("ref")); err != nil {
		return "", err
	}

	off, ok := e.res.FieldOffset("QUrlPrivate", "encodedOriginal")
	if !ok {
		off = uint64(up.MustOffset("encodedOriginal"))
	}

	// encodedOriginal is a QByteArray: one more d pointer to chase.
	text, err := e.readByteArrayAt(dAddr + off)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (d *urlDecoder) Children() (*Iterator, error) { return emptyIterator(), nil }
func (d *urlDecoder) Expandable() bool             { return false }
func (d *urlDecoder) Hint() qtpeek.Hint            { return qtpeek.HintString }

// readByteArrayAt decodes the payload of a QByteArray object located at addr,
// gating on its own shared-buffer header.
func (e *Engine) readByteArrayAt(addr uint64) (string, error) {
	dAddr, err := e.dPointer(qtpeek.Value{TypeName: "QByteArray", Addr: addr})
	if err != nil {
		return "", err
	}
	sd := e.profile.SharedData
	if err := e.checkRef("QByteArray", dAddr, sd.MustOffset("ref")); err != nil {
		return "", err
	}
	size, err := e.checkSize("QByteArray", dAddr, sd.MustOffset("size"))
	if err != nil {
		return "", err
	}
	if size == 0 {
		return "", nil
	}
	dataPtr, err := e.readPointer(dAddr + uint64(sd.MustOffset("data")))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dAddr, err)
	}
	raw, err := e.mem.Read(dataPtr, uint64(size))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dataPtr, err)
	}
	return string(raw), nil
}
