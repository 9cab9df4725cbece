package snapshot

import (
	"bytes"
	"testing"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

func buildSample(t *testing.T) *Builder {
	t.Helper()
	b := NewBuilder(qtpeek.ARM32)
	addr := b.Alloc(16, 4)
	b.PutU32(addr, 0xdeadbeef)
	b.PutU16(addr+4, 0x1234)
	b.PutU8(addr+6, 0x7f)
	b.PutPointer(addr+8, addr)
	b.DefineType("QString", 4)
	b.DefineField("QUrlPrivate", "encodedOriginal", 32)
	b.AddRoot("title", qtpeek.Value{TypeName: "QString", Addr: addr})
	return b
}

func TestBuilderReads(t *testing.T) {
	s := buildSample(t).Snapshot()
	roots := s.Roots()
	if len(roots) != 1 || roots[0].Name != "title" {
		t.Fatalf("roots = %+v", roots)
	}
	addr := roots[0].Value.Addr

	if v, err := s.ReadU32(addr); err != nil || v != 0xdeadbeef {
		t.Fatalf("ReadU32 = %#x, %v", v, err)
	}
	if v, err := s.ReadU16(addr + 4); err != nil || v != 0x1234 {
		t.Fatalf("ReadU16 = %#x, %v", v, err)
	}
	if v, err := s.ReadU8(addr + 6); err != nil || v != 0x7f {
		t.Fatalf("ReadU8 = %#x, %v", v, err)
	}
	if v, err := s.Arch().ReadPointer(s, addr+8); err != nil || v != addr {
		t.Fatalf("ReadPointer = %#x, %v", v, err)
	}
}

func TestReadOutOfBounds(t *testing.T) {
	b := NewBuilder(qtpeek.ARM32)
	addr := b.Alloc(8, 4)
	s := b.Snapshot()

	cases := []struct {
		name         string
		addr, length uint64
	}{
		{"below", addr - 4, 4},
		{"above", addr + 8, 1},
		{"straddle", addr + 6, 4},
		{"null", 0, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Read(tc.addr, tc.length); !errors.IsKind(err, errors.KindOutOfBounds) {
				t.Fatalf("Read(%#x, %d) err = %v, want out_of_bounds", tc.addr, tc.length, err)
			}
		})
	}
}

func TestOracle(t *testing.T) {
	s := buildSample(t).Snapshot()

	if sz, ok := s.SizeOf("QString"); !ok || sz != 4 {
		t.Fatalf("SizeOf(QString) = %d, %v", sz, ok)
	}
	if _, ok := s.SizeOf("QWidget"); ok {
		t.Fatal("SizeOf(QWidget) should miss")
	}
	if off, ok := s.FieldOffset("QUrlPrivate", "encodedOriginal"); !ok || off != 32 {
		t.Fatalf("FieldOffset = %d, %v", off, ok)
	}
	if _, ok := s.FieldOffset("QUrlPrivate", "scheme"); ok {
		t.Fatal("FieldOffset(scheme) should miss")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := buildSample(t).Snapshot()

	var buf bytes.Buffer
	if err := orig.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Arch().PointerSize != 4 {
		t.Fatalf("pointer size = %d", got.Arch().PointerSize)
	}
	origRoots, gotRoots := orig.Roots(), got.Roots()
	if len(gotRoots) != len(origRoots) || gotRoots[0] != origRoots[0] {
		t.Fatalf("roots = %+v, want %+v", gotRoots, origRoots)
	}
	addr := gotRoots[0].Value.Addr
	want, _ := orig.Read(addr, 16)
	have, err := got.Read(addr, 16)
	if err != nil || !bytes.Equal(have, want) {
		t.Fatalf("Read after round trip = %x, %v, want %x", have, err, want)
	}
	if sz, ok := got.SizeOf("QString"); !ok || sz != 4 {
		t.Fatalf("SizeOf after round trip = %d, %v", sz, ok)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not cbor at all"))); err == nil {
		t.Fatal("want error for garbage input")
	}

	b := NewBuilder(qtpeek.AMD64)
	b.Alloc(4, 4)
	var buf bytes.Buffer
	if err := b.Snapshot().Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// Flip the magic in place to exercise the header check.
	raw := bytes.Replace(buf.Bytes(), []byte(fileMagic), []byte("qtsnag"), 1)
	if _, err := Decode(bytes.NewReader(raw)); !errors.IsKind(err, errors.KindInvalidData) {
		t.Fatalf("bad magic err = %v, want invalid_data", err)
	}
}

func TestSnapshotIsolatedFromBuilder(t *testing.T) {
	b := NewBuilder(qtpeek.ARM32)
	addr := b.Alloc(4, 4)
	b.PutU32(addr, 1)
	s := b.Snapshot()
	b.PutU32(addr, 2)
	if v, _ := s.ReadU32(addr); v != 1 {
		t.Fatalf("snapshot saw later write, got %d", v)
	}
}
