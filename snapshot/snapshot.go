// Package snapshot reads and writes paused-process memory images.
//
// A snapshot bundles the raw memory segments, the type catalog (name to size,
// plus optional structural field offsets) and a set of named root values. It
// implements the root package's Memory and TypeOracle interfaces, so an
// engine can inspect a snapshot exactly as it would a live debugging session.
// Files are CBOR encoded.
package snapshot

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fxamacker/cbor/v2"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

const (
	fileMagic   = "qtsnap"
	fileVersion = 1
)

type fileType struct {
	Size   uint64            `cbor:"size"`
	Fields map[string]uint64 `cbor:"fields,omitempty"`
}

type fileSegment struct {
	Addr uint64 `cbor:"addr"`
	Data []byte `cbor:"data"`
}

type fileRoot struct {
	Name string `cbor:"name"`
	Type string `cbor:"type"`
	Addr uint64 `cbor:"addr"`
}

type fileImage struct {
	Magic       string              `cbor:"magic"`
	Version     int                 `cbor:"version"`
	PointerSize uint32              `cbor:"pointer_size"`
	ByteOrder   string              `cbor:"byte_order"`
	Segments    []fileSegment       `cbor:"segments"`
	Types       map[string]fileType `cbor:"types"`
	Roots       []fileRoot          `cbor:"roots,omitempty"`
}

// Root is a named top-level value recorded in the image.
type Root struct {
	Name  string
	Value qtpeek.Value
}

// Snapshot is an immutable memory image. Safe for concurrent reads.
type Snapshot struct {
	arch     qtpeek.Arch
	segments []fileSegment // sorted by Addr, non-overlapping
	types    map[string]fileType
	roots    []Root
}

// Open reads a snapshot file from disk.
func Open(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindNotFound, err, "open snapshot")
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a snapshot image from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var img fileImage
	dec := cbor.NewDecoder(r)
	if err := dec.Decode(&img); err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "decode snapshot")
	}
	if img.Magic != fileMagic {
		return nil, errors.InvalidData(errors.PhaseSnapshot, nil, "not a snapshot file")
	}
	if img.Version != fileVersion {
		return nil, errors.InvalidData(errors.PhaseSnapshot, nil,
			fmt.Sprintf("unsupported snapshot version %d", img.Version))
	}

	var order binary.ByteOrder
	switch img.ByteOrder {
	case "little":
		order = binary.LittleEndian
	case "big":
		order = binary.BigEndian
	default:
		return nil, errors.InvalidData(errors.PhaseSnapshot, nil, "unknown byte order "+img.ByteOrder)
	}
	if img.PointerSize != 4 && img.PointerSize != 8 {
		return nil, errors.InvalidData(errors.PhaseSnapshot, nil,
			fmt.Sprintf("unsupported pointer size %d", img.PointerSize))
	}

	segments := append([]fileSegment(nil), img.Segments...)
	sort.Slice(segments, func(i, j int) bool { return segments[i].Addr < segments[j].Addr })

	s := &Snapshot{
		arch:     qtpeek.Arch{ByteOrder: order, PointerSize: img.PointerSize},
		segments: segments,
		types:    img.Types,
	}
	for _, r := range img.Roots {
		s.roots = append(s.roots, Root{Name: r.Name, Value: qtpeek.Value{TypeName: r.Type, Addr: r.Addr}})
	}
	return s, nil
}

// Encode writes the snapshot image to w.
func (s *Snapshot) Encode(w io.Writer) error {
	img := fileImage{
		Magic:       fileMagic,
		Version:     fileVersion,
		PointerSize: s.arch.PointerSize,
		ByteOrder:   "little",
		Segments:    s.segments,
		Types:       s.types,
	}
	if s.arch.ByteOrder == binary.BigEndian {
		img.ByteOrder = "big"
	}
	for _, r := range s.roots {
		img.Roots = append(img.Roots, fileRoot{Name: r.Name, Type: r.Value.TypeName, Addr: r.Value.Addr})
	}
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "encode snapshot")
	}
	if err := em.NewEncoder(w).Encode(img); err != nil {
		return errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "encode snapshot")
	}
	return nil
}

// Arch reports the data model the image was captured from.
func (s *Snapshot) Arch() qtpeek.Arch { return s.arch }

// Roots lists the named values recorded in the image.
func (s *Snapshot) Roots() []Root { return s.roots }

// segmentFor locates the segment containing [addr, addr+length).
// A read spanning two segments fails: values never straddle mappings.
func (s *Snapshot) segmentFor(addr, length uint64) (*fileSegment, error) {
	i := sort.Search(len(s.segments), func(i int) bool {
		seg := s.segments[i]
		return addr < seg.Addr+uint64(len(seg.Data))
	})
	if i < len(s.segments) {
		seg := &s.segments[i]
		if addr >= seg.Addr && addr+length <= seg.Addr+uint64(len(seg.Data)) {
			return seg, nil
		}
	}
	return nil, errors.OutOfBounds(errors.PhaseSnapshot, addr, length)
}

// Read implements qtpeek.Memory. The returned slice is a copy.
func (s *Snapshot) Read(addr, length uint64) ([]byte, error) {
	seg, err := s.segmentFor(addr, length)
	if err != nil {
		return nil, err
	}
	off := addr - seg.Addr
	out := make([]byte, length)
	copy(out, seg.Data[off:off+length])
	return out, nil
}

func (s *Snapshot) ReadU8(addr uint64) (uint8, error) {
	b, err := s.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *Snapshot) ReadU16(addr uint64) (uint16, error) {
	b, err := s.Read(addr, 2)
	if err != nil {
		return 0, err
	}
	return s.arch.ByteOrder.Uint16(b), nil
}

func (s *Snapshot) ReadU32(addr uint64) (uint32, error) {
	b, err := s.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return s.arch.ByteOrder.Uint32(b), nil
}

func (s *Snapshot) ReadU64(addr uint64) (uint64, error) {
	b, err := s.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return s.arch.ByteOrder.Uint64(b), nil
}

// SizeOf implements qtpeek.TypeOracle.
func (s *Snapshot) SizeOf(name string) (uint64, bool) {
	t, ok := s.types[name]
	if !ok {
		return 0, false
	}
	return t.Size, true
}

// FieldOffset implements qtpeek.TypeOracle.
func (s *Snapshot) FieldOffset(typeName, fieldName string) (uint64, bool) {
	t, ok := s.types[typeName]
	if !ok || t.Fields == nil {
		return 0, false
	}
	off, ok := t.Fields[fieldName]
	return off, ok
}
