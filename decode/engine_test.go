package decode

import (
	"testing"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/layout"
)

func TestDispatchCatalog(t *testing.T) {
	m := newImg(t)
	e := m.engine(Options{})

	matched := []string{
		"QString", "QByteArray", "QChar", "QDate", "QTime", "QDateTime", "QUrl",
		"QList<int>", "QStringList", "QQueue<int>", "QVector<int>",
		"QStack<int>", "QLinkedList<int>", "QMap<int, int>",
		"QMultiMap<int, int>", "QHash<int, int>", "QMultiHash<int, int>",
		"QSet<int>", "const QString &", "QList<QMap<int, QString> >",
	}
	for _, name := range matched {
		if e.DecoderFor(qtpeek.Value{TypeName: name}) == nil {
			t.Errorf("DecoderFor(%q) = nil, want decoder", name)
		}
	}

	unmatched := []string{
		"QWidget", "QString *", "int", "std::string", "QListIterator<int>",
		"MyQString", "",
	}
	for _, name := range unmatched {
		if e.DecoderFor(qtpeek.Value{TypeName: name}) != nil {
			t.Errorf("DecoderFor(%q) matched, want host fallback", name)
		}
		if _, ok := e.Inspect(qtpeek.Value{TypeName: name}); ok {
			t.Errorf("Inspect(%q) dispatched, want ok=false", name)
		}
	}
}

func TestInspectPlaceholders(t *testing.T) {
	m := newImg(t)

	nullString := m.object(0)
	danglingString := m.object(0xdead0000)

	refD, _ := m.sharedData(-1, 5, 16)
	badRef := m.object(refD)

	hugeList, _ := m.qlist(0, 10000)

	variantList, _ := m.qlist(0, 0)

	e := m.engine(Options{})
	cases := []struct {
		name    string
		val     qtpeek.Value
		summary string
	}{
		{"null d pointer", qtpeek.Value{TypeName: "QString", Addr: nullString}, "Not initialized"},
		{"unmapped d pointer", qtpeek.Value{TypeName: "QString", Addr: danglingString}, "Not initialized"},
		{"negative ref count", qtpeek.Value{TypeName: "QString", Addr: badRef}, "Not initialized"},
		{"oversized list", qtpeek.Value{TypeName: "QList<int>", Addr: hugeList}, "Not initialized or size too large to display"},
		{"variant element", qtpeek.Value{TypeName: "QList<QVariant>", Addr: variantList}, "QVariant types printing not supported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := summarize(t, e, tc.val)
			if res.Summary != tc.summary {
				t.Fatalf("Summary = %q, want %q", res.Summary, tc.summary)
			}
		})
	}
}

func TestInspectIsRepeatable(t *testing.T) {
	m := newImg(t)
	val := qtpeek.Value{TypeName: "QString", Addr: m.qstring("stable")}
	e := m.engine(Options{})

	first := summarize(t, e, val)
	for i := 0; i < 3; i++ {
		if got := summarize(t, e, val); got != first {
			t.Fatalf("Inspect changed between calls: %+v vs %+v", got, first)
		}
	}
}

func TestChildrenTotalOnFailure(t *testing.T) {
	m := newImg(t)
	nullList := m.object(0)
	e := m.engine(Options{})

	it := e.Children(qtpeek.Value{TypeName: "QList<int>", Addr: nullList})
	if kids := it.Collect(); len(kids) != 0 {
		t.Fatalf("children of failed gate = %d, want 0", len(kids))
	}
	it = e.Children(qtpeek.Value{TypeName: "QWidget", Addr: nullList})
	if kids := it.Collect(); len(kids) != 0 {
		t.Fatalf("children of undispatched type = %d, want 0", len(kids))
	}
}

func TestNewEngineRejectsUnknownLayout(t *testing.T) {
	m := newImg(t)
	s := m.b.Snapshot()
	if _, err := NewEngine(s, s, s.Arch(), Options{LayoutVersion: "qt5"}); err == nil {
		t.Fatal("want error for unknown layout version")
	}
	if _, err := NewEngine(s, s, s.Arch(), Options{LayoutVersion: layout.VersionQt4}); err != nil {
		t.Fatalf("qt4 profile rejected: %v", err)
	}
}

func TestRefLimitOption(t *testing.T) {
	m := newImg(t)
	d, _ := m.sharedData(100, 0, 4)
	val := qtpeek.Value{TypeName: "QString", Addr: m.object(d)}

	if res := summarize(t, m.engine(Options{}), val); res.Summary != `""` {
		t.Fatalf("default limit: Summary = %q", res.Summary)
	}
	if res := summarize(t, m.engine(Options{RefLimit: 50}), val); res.Summary != "Not initialized" {
		t.Fatalf("tight limit: Summary = %q", res.Summary)
	}
}
