package layout

import (
	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// VersionQt4 is the only framework layout this package currently describes.
const VersionQt4 = "qt4"

// Profile holds every private-struct descriptor for one framework version and
// one data model. Built once at startup, immutable afterwards.
type Profile struct {
	Version string
	Arch    qtpeek.Arch

	// SharedData is the QString/QByteArray buffer header:
	// ref count, allocated count, element count, payload pointer.
	SharedData *Struct

	// ListData is QListData::Data: ref, alloc, begin, end, bit flags,
	// then the slot array.
	ListData *Struct

	// VectorData is QVectorData minus the trailing typed array; the array
	// offset depends on the element alignment, see VectorArrayOffset.
	VectorData *Struct

	// LinkedListData is the linked-list header; LinkedListNode is one node
	// minus the trailing element, see LinkedListElemOffset.
	LinkedListData *Struct
	LinkedListNode *Struct

	// MapData is the skip-list style map header. Node linkage inside a map
	// node is MapLinkageSize bytes (backward plus forward[0]); the key/value
	// payload sits immediately before the linkage a node pointer points at.
	MapData        *Struct
	MapLinkageSize uint32

	// HashData is the hash-table header; HashNodeHeader is the intrusive
	// node prologue (chain pointer plus stored hash).
	HashData       *Struct
	HashNodeHeader *Struct

	// DateTimePrivate lays out [ref][date][time] inside QDateTimePrivate.
	DateTimePrivate *Struct

	// URLPrivate reproduces the head of QUrlPrivate in declaration order so
	// the encodedOriginal fallback offset can be computed when the host has
	// no structural debug info for it.
	URLPrivate *Struct
}

// NewProfile builds the descriptor set for the given framework version.
// Unknown versions fail with a layout_mismatch error: decoding with a guessed
// layout would misread memory silently.
func NewProfile(version string, arch qtpeek.Arch) (*Profile, error) {
	if version != VersionQt4 {
		return nil, errors.LayoutMismatch(errors.PhaseConfig,
			"unsupported framework layout version "+version)
	}
	if arch.PointerSize != 4 && arch.PointerSize != 8 {
		return nil, errors.LayoutMismatch(errors.PhaseConfig,
			"unsupported pointer size")
	}

	ptr := arch.PointerSize
	intF := func(name string) Field { return Field{Name: name, Size: 4, Align: 4} }
	ptrF := func(name string) Field { return Field{Name: name, Size: ptr, Align: ptr} }
	shortF := func(name string) Field { return Field{Name: name, Size: 2, Align: 2} }

	p := &Profile{Version: version, Arch: arch}

	p.SharedData = Compute("SharedData",
		intF("ref"),
		intF("alloc"),
		intF("size"),
		ptrF("data"),
	)

	p.ListData = Compute("ListData",
		intF("ref"),
		intF("alloc"),
		intF("begin"),
		intF("end"),
		intF("bits"),
		ptrF("array"),
	)

	p.VectorData = Compute("VectorData",
		intF("ref"),
		intF("alloc"),
		intF("size"),
		intF("bits"),
	)

	p.LinkedListData = Compute("LinkedListData",
		ptrF("n"),
		ptrF("p"),
		intF("ref"),
		intF("size"),
	)
	p.LinkedListNode = Compute("LinkedListNode",
		ptrF("n"),
		ptrF("p"),
	)

	mapFields := []Field{ptrF("backward")}
	// forward[12]: a skip list of up to 12 levels; traversal uses level 0.
	for _, lvl := range []string{"forward0", "forward1", "forward2", "forward3",
		"forward4", "forward5", "forward6", "forward7", "forward8", "forward9",
		"forward10", "forward11"} {
		mapFields = append(mapFields, ptrF(lvl))
	}
	mapFields = append(mapFields, intF("ref"), intF("topLevel"), intF("size"))
	p.MapData = Compute("MapData", mapFields...)
	p.MapLinkageSize = 2 * ptr

	p.HashData = Compute("HashData",
		ptrF("fakeNext"),
		ptrF("buckets"),
		intF("ref"),
		intF("size"),
		intF("nodeSize"),
		shortF("userNumBits"),
		shortF("numBits"),
		intF("numBuckets"),
	)
	p.HashNodeHeader = Compute("HashNodeHeader",
		ptrF("next"),
		intF("h"),
	)

	p.DateTimePrivate = Compute("DateTimePrivate",
		intF("ref"),
		intF("date"), // QDate: a single Julian day number
		intF("time"), // QTime: a single milliseconds-since-midnight count
	)

	// QString and QByteArray are each a lone d pointer, so the fallback
	// offset of encodedOriginal is derived purely from the pointer size.
	p.URLPrivate = Compute("URLPrivate",
		intF("ref"),
		ptrF("scheme"),
		ptrF("userName"),
		ptrF("password"),
		ptrF("host"),
		ptrF("path"),
		ptrF("fragment"),
		ptrF("query"),
		ptrF("encodedOriginal"),
	)

	return p, nil
}

// VectorArrayOffset returns the offset of the typed element array inside
// QVectorData for elements of the given alignment.
func (p *Profile) VectorArrayOffset(elemAlign uint32) uint32 {
	return AlignTo(p.VectorData.Size(), elemAlign)
}

// LinkedListElemOffset returns the offset of the stored element inside a
// linked-list node for elements of the given alignment.
func (p *Profile) LinkedListElemOffset(elemAlign uint32) uint32 {
	return AlignTo(p.LinkedListNode.Size(), elemAlign)
}

// HashKeyOffset returns the offset of the key inside a hash node. The header
// end is taken unpadded: the key packs right after the stored hash when its
// alignment allows.
func (p *Profile) HashKeyOffset(keyAlign uint32) uint32 {
	return AlignTo(p.HashNodeHeader.MustOffset("h")+4, keyAlign)
}
