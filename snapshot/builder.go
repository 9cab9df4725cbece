package snapshot

import (
	qtpeek "github.com/qtpeek/qtpeek"
)

// defaultBase keeps synthetic addresses away from zero so a null
// d-pointer is never a valid allocation.
const defaultBase uint64 = 0x10000000

// Builder composes a memory image from scratch. Allocations come from a
// bump cursor in a single growing segment; the type catalog and roots are
// filled in alongside. Call Snapshot to freeze the image.
type Builder struct {
	arch  qtpeek.Arch
	base  uint64
	buf   []byte
	types map[string]fileType
	roots []Root
}

// NewBuilder starts an empty image for the given data model.
func NewBuilder(arch qtpeek.Arch) *Builder {
	return &Builder{
		arch:  arch,
		base:  defaultBase,
		types: make(map[string]fileType),
	}
}

// Arch reports the builder's data model.
func (b *Builder) Arch() qtpeek.Arch { return b.arch }

// Alloc reserves size bytes aligned to align and returns their address.
// The bytes are zeroed.
func (b *Builder) Alloc(size, align uint64) uint64 {
	if align == 0 {
		align = 1
	}
	cur := b.base + uint64(len(b.buf))
	pad := (align - cur%align) % align
	b.buf = append(b.buf, make([]byte, pad+size)...)
	return cur + pad
}

func (b *Builder) slot(addr, length uint64) []byte {
	off := addr - b.base
	return b.buf[off : off+length]
}

// PutBytes writes raw bytes at a previously allocated address.
func (b *Builder) PutBytes(addr uint64, data []byte) {
	copy(b.slot(addr, uint64(len(data))), data)
}

func (b *Builder) PutU8(addr uint64, v uint8) {
	b.slot(addr, 1)[0] = v
}

func (b *Builder) PutU16(addr uint64, v uint16) {
	b.arch.ByteOrder.PutUint16(b.slot(addr, 2), v)
}

func (b *Builder) PutU32(addr uint64, v uint32) {
	b.arch.ByteOrder.PutUint32(b.slot(addr, 4), v)
}

func (b *Builder) PutU64(addr uint64, v uint64) {
	b.arch.ByteOrder.PutUint64(b.slot(addr, 8), v)
}

// PutI32 writes a signed 32-bit value in two's complement.
func (b *Builder) PutI32(addr uint64, v int32) {
	b.PutU32(addr, uint32(v))
}

// PutPointer writes a pointer-sized value at addr.
func (b *Builder) PutPointer(addr, v uint64) {
	if b.arch.PointerSize == 8 {
		b.PutU64(addr, v)
	} else {
		b.PutU32(addr, uint32(v))
	}
}

// PutUTF16 writes s as UTF-16 code units at addr and returns the unit count.
func (b *Builder) PutUTF16(addr uint64, units []uint16) {
	for i, u := range units {
		b.PutU16(addr+uint64(i)*2, u)
	}
}

// DefineType records a type's size in the catalog.
func (b *Builder) DefineType(name string, size uint64) {
	t := b.types[name]
	t.Size = size
	b.types[name] = t
}

// DefineField records a structural field offset for a type.
func (b *Builder) DefineField(typeName, fieldName string, off uint64) {
	t := b.types[typeName]
	if t.Fields == nil {
		t.Fields = make(map[string]uint64)
	}
	t.Fields[fieldName] = off
	b.types[typeName] = t
}

// AddRoot records a named top-level value.
func (b *Builder) AddRoot(name string, v qtpeek.Value) {
	b.roots = append(b.roots, Root{Name: name, Value: v})
}

// Snapshot freezes the image. The builder may keep being written to;
// later writes do not affect the returned snapshot.
func (b *Builder) Snapshot() *Snapshot {
	types := make(map[string]fileType, len(b.types))
	for k, v := range b.types {
		ft := fileType{Size: v.Size}
		if v.Fields != nil {
			ft.Fields = make(map[string]uint64, len(v.Fields))
			for fk, fv := range v.Fields {
				ft.Fields[fk] = fv
			}
		}
		types[k] = ft
	}
	data := append([]byte(nil), b.buf...)
	var segments []fileSegment
	if len(data) > 0 {
		segments = []fileSegment{{Addr: b.base, Data: data}}
	}
	return &Snapshot{
		arch:     b.arch,
		segments: segments,
		types:    types,
		roots:    append([]Root(nil), b.roots...),
	}
}
