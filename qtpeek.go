package qtpeek

import "encoding/binary"

// Memory is read access to the paused process image. Implementations must
// never block indefinitely: a read of an unmapped address returns an error.
type Memory interface {
	Read(addr uint64, length uint64) ([]byte, error)
	ReadU8(addr uint64) (uint8, error)
	ReadU16(addr uint64) (uint16, error)
	ReadU32(addr uint64) (uint32, error)
	ReadU64(addr uint64) (uint64, error)
}

// TypeOracle is the host's type-system introspection: it maps a type name to
// its size in the inspected process. FieldOffset is optional; hosts without
// structural debug info return ok=false and decoders fall back to computed
// layout descriptors.
type TypeOracle interface {
	SizeOf(name string) (uint64, bool)
	FieldOffset(typeName, fieldName string) (uint64, bool)
}

// Arch describes the inspected process's data model.
type Arch struct {
	ByteOrder   binary.ByteOrder
	PointerSize uint32 // 4 or 8
}

// ARM32 matches 32-bit little-endian targets.
var ARM32 = Arch{ByteOrder: binary.LittleEndian, PointerSize: 4}

// AMD64 matches 64-bit little-endian targets.
var AMD64 = Arch{ByteOrder: binary.LittleEndian, PointerSize: 8}

// ReadPointer reads a pointer-sized unsigned value at addr.
func (a Arch) ReadPointer(mem Memory, addr uint64) (uint64, error) {
	if a.PointerSize == 8 {
		return mem.ReadU64(addr)
	}
	v, err := mem.ReadU32(addr)
	return uint64(v), err
}

// Value is a raw value handle: a typed region of debuggee memory borrowed for
// the duration of one inspection call. Field access produces new handles; the
// backing memory is never copied or written.
type Value struct {
	TypeName string
	Addr     uint64
}

// Hint guides host rendering of a decoded value.
type Hint string

const (
	HintNone   Hint = ""
	HintString Hint = "string" // buffer-like scalar
	HintMap    Hint = "map"    // alternating key/value children
)

// Child is one labeled element of an expandable value.
type Child struct {
	Label string
	Value Value
}

// Result is what the host renders for one inspected value. Summary is always
// non-empty, even when decoding failed.
type Result struct {
	Summary     string
	Hint        Hint
	HasChildren bool
}
