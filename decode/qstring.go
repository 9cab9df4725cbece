package decode

import (
	"fmt"
	"strings"
	"unicode/utf16"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// stringDecoder reads the UTF-16 code-unit buffer behind a QString's shared
// data header. Oversized strings decode a truncated prefix and append an
// ellipsis together with the buffer address, so the user still sees where the
// data lives.
type stringDecoder struct {
	e   *Engine
	val qtpeek.Value
}

func (d *stringDecoder) Summary() (string, error) {
	e := d.e
	dAddr, err := e.dPointer(d.val)
	if err != nil {
		return "", err
	}

	sd := e.profile.SharedData
	if err := e.checkRef(d.val.TypeName, dAddr, sd.MustOffset("ref")); err != nil {
		return "", err
	}

	size, err := e.readI32(dAddr + uint64(sd.MustOffset("size")))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dAddr, err)
	}
	if size < 0 {
		return "", errors.InvalidSize(errors.PhaseDecode, d.val.TypeName, dAddr, size)
	}
	if size == 0 {
		return `""`, nil
	}

	truncated := false
	readUnits := size
	if readUnits > e.opts.SizeLimit {
		readUnits = e.opts.SizeLimit
		truncated = true
	}

	dataPtr, err := e.readPointer(dAddr + uint64(sd.MustOffset("data")))
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, dAddr, err)
	}

	text, err := e.readUTF16(dataPtr, readUnits)
	if err != nil {
		return "", err
	}

	if truncated {
		return fmt.Sprintf("\"%s...\" [Addr: 0x%x]", text, dataPtr), nil
	}
	return "\"" + text + "\"", nil
}

func (d *stringDecoder) Children() (*Iterator, error) { return emptyIterator(), nil }
func (d *stringDecoder) Expandable() bool             { return false }
func (d *stringDecoder) Hint() qtpeek.Hint            { return qtpeek.HintString }

// readUTF16 reads units 16-bit code units at addr and transcodes them to a Go
// string. Unpaired surrogates become the replacement character instead of
// failing the whole operation.
func (e *Engine) readUTF16(addr uint64, units int64) (string, error) {
	raw, err := e.mem.Read(addr, uint64(units)*2)
	if err != nil {
		return "", errors.TraversalFault(errors.PhaseDecode, addr, err)
	}

	codeUnits := make([]uint16, units)
	for i := range codeUnits {
		codeUnits[i] = e.arch.ByteOrder.Uint16(raw[i*2:])
	}

	var b strings.Builder
	for _, r := range utf16.Decode(codeUnits) {
		b.WriteRune(r)
	}
	return b.String(), nil
}
