package decode

// Test fixtures compose synthetic memory images through the snapshot builder
// and hand them to a real engine; nothing in these tests stubs the decoders.

import (
	"testing"
	"unicode/utf16"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/layout"
	"github.com/qtpeek/qtpeek/snapshot"
)

type img struct {
	t    *testing.T
	b    *snapshot.Builder
	p    *layout.Profile
	arch qtpeek.Arch
}

func newImg(t *testing.T) *img {
	t.Helper()
	arch := qtpeek.ARM32
	p, err := layout.NewProfile(layout.VersionQt4, arch)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	b := snapshot.NewBuilder(arch)
	ptr := uint64(arch.PointerSize)
	for name, size := range map[string]uint64{
		"int": 4, "uint": 4, "char": 1, "short": 2, "double": 8,
		"QString": ptr, "QByteArray": ptr, "QChar": 2,
	} {
		b.DefineType(name, size)
	}
	return &img{t: t, b: b, p: p, arch: arch}
}

func (m *img) ptrSize() uint64 { return uint64(m.arch.PointerSize) }

func (m *img) engine(opts Options) *Engine {
	m.t.Helper()
	s := m.b.Snapshot()
	e, err := NewEngine(s, s, s.Arch(), opts)
	if err != nil {
		m.t.Fatalf("engine: %v", err)
	}
	return e
}

// object allocates a lone d-pointer object as QString, QList and the other
// implicitly shared classes lay out, pointing at dAddr.
func (m *img) object(dAddr uint64) uint64 {
	addr := m.b.Alloc(m.ptrSize(), m.ptrSize())
	m.b.PutPointer(addr, dAddr)
	return addr
}

// sharedData allocates a QString/QByteArray buffer header with the given ref
// and size fields and returns (dAddr, payloadAddr). payloadLen bytes of
// payload storage follow the header allocation.
func (m *img) sharedData(ref, size int32, payloadLen uint64) (uint64, uint64) {
	sd := m.p.SharedData
	d := m.b.Alloc(uint64(sd.Size()), 4)
	payload := m.b.Alloc(payloadLen+2, 2)
	m.b.PutI32(d+uint64(sd.MustOffset("ref")), ref)
	m.b.PutI32(d+uint64(sd.MustOffset("alloc")), size)
	m.b.PutI32(d+uint64(sd.MustOffset("size")), size)
	m.b.PutPointer(d+uint64(sd.MustOffset("data")), payload)
	return d, payload
}

// qstringData builds the shared buffer behind a QString holding s and
// returns the header address a QString object would point at.
func (m *img) qstringData(s string) uint64 {
	units := utf16.Encode([]rune(s))
	d, payload := m.sharedData(1, int32(len(units)), uint64(len(units))*2)
	m.b.PutUTF16(payload, units)
	return d
}

// qstring builds a healthy QString object holding s.
func (m *img) qstring(s string) uint64 {
	return m.object(m.qstringData(s))
}

// qbytearray builds a healthy QByteArray object holding raw.
func (m *img) qbytearray(raw []byte) uint64 {
	d, payload := m.sharedData(1, int32(len(raw)), uint64(len(raw)))
	m.b.PutBytes(payload, raw)
	return m.object(d)
}

// qlist builds a QList header with the given begin/end and returns
// (objAddr, slotsAddr). Slot contents are written by the caller.
func (m *img) qlist(begin, end int32) (uint64, uint64) {
	ld := m.p.ListData
	slots := uint64(end) * m.ptrSize()
	d := m.b.Alloc(uint64(ld.Size())+slots, m.ptrSize())
	m.b.PutI32(d+uint64(ld.MustOffset("ref")), 1)
	m.b.PutI32(d+uint64(ld.MustOffset("begin")), begin)
	m.b.PutI32(d+uint64(ld.MustOffset("end")), end)
	return m.object(d), d + uint64(ld.MustOffset("array"))
}

// qvectorI32 builds a QVector<int> holding vals.
func (m *img) qvectorI32(vals []int32) uint64 {
	vd := m.p.VectorData
	arrayOff := uint64(m.p.VectorArrayOffset(4))
	d := m.b.Alloc(arrayOff+uint64(len(vals))*4, m.ptrSize())
	m.b.PutI32(d+uint64(vd.MustOffset("ref")), 1)
	m.b.PutI32(d+uint64(vd.MustOffset("size")), int32(len(vals)))
	for i, v := range vals {
		m.b.PutI32(d+arrayOff+uint64(i)*4, v)
	}
	return m.object(d)
}

// qlinkedListI32 builds a QLinkedList<int> holding vals: a circular chain of
// nodes through the header sentinel.
func (m *img) qlinkedListI32(vals []int32) uint64 {
	lld := m.p.LinkedListData
	elemOff := uint64(m.p.LinkedListElemOffset(4))
	nextOff := uint64(m.p.LinkedListNode.MustOffset("n"))

	d := m.b.Alloc(uint64(lld.Size()), m.ptrSize())
	m.b.PutI32(d+uint64(lld.MustOffset("ref")), 1)
	m.b.PutI32(d+uint64(lld.MustOffset("size")), int32(len(vals)))

	prev := d
	for _, v := range vals {
		node := m.b.Alloc(elemOff+4, m.ptrSize())
		m.b.PutI32(node+elemOff, v)
		m.b.PutPointer(prev+nextOff, node)
		prev = node
	}
	m.b.PutPointer(prev+nextOff, d)
	return m.object(d)
}

// qmapI32 builds a QMap<int, int> from parallel key/value slices. Each node is
// [key][value][backward][forward0]; node pointers address the linkage, the
// payload sits before it.
func (m *img) qmapI32(keys, vals []int32) uint64 {
	m.b.DefineType("QMapNode<int, int>", 8+2*m.ptrSize())
	md := m.p.MapData
	forwardOff := uint64(md.MustOffset("forward0"))

	d := m.b.Alloc(uint64(md.Size()), m.ptrSize())
	m.b.PutI32(d+uint64(md.MustOffset("ref")), 1)
	m.b.PutI32(d+uint64(md.MustOffset("size")), int32(len(keys)))

	prevLink := d + forwardOff
	for i := range keys {
		node := m.b.Alloc(8+2*m.ptrSize(), m.ptrSize())
		m.b.PutI32(node, keys[i])
		m.b.PutI32(node+4, vals[i])
		link := node + 8
		// the sentinel is the header itself
		m.b.PutPointer(link+m.ptrSize(), d)
		m.b.PutPointer(prevLink, link)
		prevLink = link + m.ptrSize()
	}
	return m.object(d)
}

// hashTable lays out a QHash/QSet backing store: numBuckets chain heads, each
// chain's tail pointing at the header sentinel, empty buckets holding the
// sentinel directly. nodeFill writes one node's payload after [next][h].
func (m *img) hashTable(size int32, numBuckets int64, nodes []hashNode, nodeSize uint64) uint64 {
	hd := m.p.HashData
	d := m.b.Alloc(uint64(hd.Size()), m.ptrSize())
	buckets := m.b.Alloc(uint64(numBuckets)*m.ptrSize(), m.ptrSize())
	m.b.PutI32(d+uint64(hd.MustOffset("ref")), 1)
	m.b.PutI32(d+uint64(hd.MustOffset("size")), size)
	m.b.PutI32(d+uint64(hd.MustOffset("numBuckets")), int32(numBuckets))
	m.b.PutPointer(d+uint64(hd.MustOffset("buckets")), buckets)

	// all buckets empty until a chain is attached
	for i := int64(0); i < numBuckets; i++ {
		m.b.PutPointer(buckets+uint64(i)*m.ptrSize(), d)
	}

	hOff := uint64(m.p.HashNodeHeader.MustOffset("h"))
	tail := make(map[int64]uint64)
	for _, n := range nodes {
		node := m.b.Alloc(nodeSize, m.ptrSize())
		m.b.PutU32(node+hOff, n.h)
		n.fill(node)
		bucket := int64(n.h) % numBuckets
		if prev, ok := tail[bucket]; ok {
			m.b.PutPointer(prev, node)
		} else {
			m.b.PutPointer(buckets+uint64(bucket)*m.ptrSize(), node)
		}
		m.b.PutPointer(node, d)
		tail[bucket] = node
	}
	return m.object(d)
}

type hashNode struct {
	h    uint32
	fill func(node uint64)
}

// qdatetime builds a QDateTime private object from a Julian day and
// milliseconds since midnight.
func (m *img) qdatetime(jd uint32, mds int32) uint64 {
	dt := m.p.DateTimePrivate
	d := m.b.Alloc(uint64(dt.Size()), 4)
	m.b.PutI32(d+uint64(dt.MustOffset("ref")), 1)
	m.b.PutU32(d+uint64(dt.MustOffset("date")), jd)
	m.b.PutI32(d+uint64(dt.MustOffset("time")), mds)
	return m.object(d)
}

// qurl builds a QUrl whose private object stores encoded as its original
// encoded form. withFieldInfo additionally registers the structural offset in
// the type catalog.
func (m *img) qurl(encoded string, withFieldInfo bool) uint64 {
	up := m.p.URLPrivate
	encOff := uint64(up.MustOffset("encodedOriginal"))
	d := m.b.Alloc(uint64(up.Size()), m.ptrSize())
	m.b.PutI32(d+uint64(up.MustOffset("ref")), 1)

	baD, payload := m.sharedData(1, int32(len(encoded)), uint64(len(encoded)))
	m.b.PutBytes(payload, []byte(encoded))
	m.b.PutPointer(d+encOff, baD)

	if withFieldInfo {
		m.b.DefineField("QUrlPrivate", "encodedOriginal", encOff)
	}
	return m.object(d)
}

// mustPointer reads the pointer stored at addr through a throwaway snapshot
// of the image under construction.
func mustPointer(t *testing.T, m *img, addr uint64) uint64 {
	t.Helper()
	s := m.b.Snapshot()
	v, err := s.Arch().ReadPointer(s, addr)
	if err != nil {
		t.Fatalf("read pointer at %#x: %v", addr, err)
	}
	return v
}

// collect drains the decoder's children and fails the test on an iterator
// fault unless wantErr is set.
func collect(t *testing.T, it *Iterator, wantErr bool) []qtpeek.Child {
	t.Helper()
	out := it.Collect()
	if err := it.Err(); (err != nil) != wantErr {
		t.Fatalf("iterator err = %v, wantErr = %v", err, wantErr)
	}
	return out
}

// summarize runs Inspect and fails the test when the type is not dispatched.
func summarize(t *testing.T, e *Engine, v qtpeek.Value) qtpeek.Result {
	t.Helper()
	res, ok := e.Inspect(v)
	if !ok {
		t.Fatalf("Inspect(%q): no decoder", v.TypeName)
	}
	return res
}
