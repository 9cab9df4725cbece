// Package layout provides versioned binary-layout descriptors for the private
// structs of the inspected framework.
//
// Field offsets are never hard-coded at use sites: each descriptor is computed
// once from the sizes and alignments of its fields in declaration order,
// exactly the way the target compiler lays the struct out. A Profile bundles
// every descriptor for one framework version and one data model; requesting an
// unknown version fails loudly instead of silently misreading memory.
package layout

// Field is one member of an inspected struct, in declaration order.
type Field struct {
	Name  string
	Size  uint32
	Align uint32
}

// Struct is a compiled layout descriptor: field name to byte offset.
type Struct struct {
	Name    string
	offsets map[string]uint32
	size    uint32
	align   uint32
}

// Compute lays out fields at aligned running offsets and pads the total size
// to the struct's own alignment.
func Compute(name string, fields ...Field) *Struct {
	s := &Struct{
		Name:    name,
		offsets: make(map[string]uint32, len(fields)),
		align:   1,
	}
	offset := uint32(0)
	for _, f := range fields {
		align := f.Align
		if align == 0 {
			align = 1
		}
		offset = AlignTo(offset, align)
		s.offsets[f.Name] = offset
		offset += f.Size
		if align > s.align {
			s.align = align
		}
	}
	s.size = AlignTo(offset, s.align)
	return s
}

// Offset returns the byte offset of the named field.
func (s *Struct) Offset(field string) (uint32, bool) {
	off, ok := s.offsets[field]
	return off, ok
}

// MustOffset is Offset for fields the descriptor is known to contain.
// It panics on a missing field, which is a programming error, not a
// debuggee-memory condition.
func (s *Struct) MustOffset(field string) uint32 {
	off, ok := s.offsets[field]
	if !ok {
		panic("layout: struct " + s.Name + " has no field " + field)
	}
	return off
}

// Size returns the padded struct size.
func (s *Struct) Size() uint32 { return s.size }

// Align returns the struct's alignment.
func (s *Struct) Align() uint32 { return s.align }

// AlignTo rounds offset up to the next multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// NaturalAlign guesses the alignment of a type known only by size: the
// largest power of two not exceeding the size, capped at 8. This matches the
// target ABIs this profile supports; it can be wrong for packed user structs,
// which is an accepted limitation of size-only introspection.
func NaturalAlign(size uint64) uint32 {
	switch {
	case size >= 8:
		return 8
	case size >= 4:
		return 4
	case size >= 2:
		return 2
	default:
		return 1
	}
}
