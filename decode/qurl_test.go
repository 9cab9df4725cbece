package decode

import (
	"testing"

	qtpeek "github.com/qtpeek/qtpeek"
)

func TestURLWithStructuralOffset(t *testing.T) {
	m := newImg(t)
	obj := m.qurl("http://example.com/a?b=c", true)
	e := m.engine(Options{})

	res := summarize(t, e, qtpeek.Value{TypeName: "QUrl", Addr: obj})
	if res.Summary != "http://example.com/a?b=c" {
		t.Fatalf("Summary = %q", res.Summary)
	}
	if res.Hint != qtpeek.HintString {
		t.Fatalf("Hint = %v, want string", res.Hint)
	}
	if res.HasChildren {
		t.Fatal("QUrl should not be expandable")
	}
}

func TestURLFallbackOffset(t *testing.T) {
	m := newImg(t)
	obj := m.qurl("https://fallback.test/", false)
	e := m.engine(Options{})

	res := summarize(t, e, qtpeek.Value{TypeName: "QUrl", Addr: obj})
	if res.Summary != "https://fallback.test/" {
		t.Fatalf("Summary = %q", res.Summary)
	}
}

func TestURLEmptyEncodedForm(t *testing.T) {
	m := newImg(t)
	obj := m.qurl("", true)
	e := m.engine(Options{})

	res := summarize(t, e, qtpeek.Value{TypeName: "QUrl", Addr: obj})
	if res.Summary != "" {
		t.Fatalf("Summary = %q, want empty", res.Summary)
	}
}

func TestURLNotInitialized(t *testing.T) {
	m := newImg(t)
	null := m.object(0)

	// valid private object whose byte array member was never constructed
	up := m.p.URLPrivate
	d := m.b.Alloc(uint64(up.Size()), m.ptrSize())
	m.b.PutI32(d+uint64(up.MustOffset("ref")), 1)
	nullMember := m.object(d)
	e := m.engine(Options{})

	for name, addr := range map[string]uint64{"null d": null, "null member": nullMember} {
		res := summarize(t, e, qtpeek.Value{TypeName: "QUrl", Addr: addr})
		if res.Summary != "Not initialized" {
			t.Fatalf("%s: Summary = %q", name, res.Summary)
		}
	}
}
