package resolver

import (
	"reflect"
	"testing"

	"github.com/qtpeek/qtpeek/errors"
)

type fakeOracle struct {
	sizes   map[string]uint64
	lookups map[string]int
}

func (o *fakeOracle) SizeOf(name string) (uint64, bool) {
	if o.lookups == nil {
		o.lookups = make(map[string]int)
	}
	o.lookups[name]++
	s, ok := o.sizes[name]
	return s, ok
}

func (o *fakeOracle) FieldOffset(typeName, fieldName string) (uint64, bool) {
	return 0, false
}

func TestResolve(t *testing.T) {
	oracle := &fakeOracle{sizes: map[string]uint64{
		"QString":            4,
		"QMap<int, QString>": 4,
		"int":                4,
	}}
	r := New(oracle)

	typ, err := r.Resolve("QString")
	if err != nil {
		t.Fatalf("Resolve(QString): %v", err)
	}
	if typ.Name != "QString" || typ.Size != 4 || typ.IsTemplate() {
		t.Errorf("unexpected type: %+v", typ)
	}

	typ, err = r.Resolve("QMap<int, QString>")
	if err != nil {
		t.Fatalf("Resolve(QMap): %v", err)
	}
	if typ.Template != "QMap" || typ.Arg(0) != "int" || typ.Arg(1) != "QString" {
		t.Errorf("unexpected template split: %+v", typ)
	}
	if typ.Arg(2) != "" || typ.Arg(-1) != "" {
		t.Error("out-of-range Arg should be empty")
	}
}

func TestResolve_Memoization(t *testing.T) {
	oracle := &fakeOracle{sizes: map[string]uint64{"QString": 4}}
	r := New(oracle)

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve("QString"); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Resolve("NoSuchType"); err == nil {
			t.Fatal("NoSuchType should be unresolvable")
		}
	}
	if oracle.lookups["QString"] != 1 {
		t.Errorf("QString looked up %d times, want 1", oracle.lookups["QString"])
	}
	if oracle.lookups["NoSuchType"] != 1 {
		t.Errorf("failed lookup not cached: %d calls", oracle.lookups["NoSuchType"])
	}
}

func TestResolve_Void(t *testing.T) {
	r := New(&fakeOracle{})
	typ, err := r.Resolve("void")
	if err != nil {
		t.Fatalf("void must always resolve: %v", err)
	}
	if typ.Size != 1 {
		t.Errorf("void size = %d, want fallback 1", typ.Size)
	}
}

func TestResolve_AnonymousNamespace(t *testing.T) {
	oracle := &fakeOracle{sizes: map[string]uint64{}}
	r := New(oracle)

	name := "(anonymous namespace)::Suppression"
	if _, err := r.Resolve(name); !errors.IsKind(err, errors.KindUnresolvableType) {
		t.Fatalf("anonymous-namespace name should be unresolvable, got %v", err)
	}
	r.Resolve(name)
	if oracle.lookups[name] != 0 {
		t.Error("anonymous-namespace names must not reach the oracle")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"QString", "QString"},
		{"const QString", "QString"},
		{"QString &", "QString"},
		{"const QString &", "QString"},
		{"volatile const QMap<int, QString> &", "QMap<int, QString>"},
		{"  QByteArray  ", "QByteArray"},
	}
	for _, tc := range tests {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitTemplate(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArgs []string
	}{
		{"QString", "", nil},
		{"QList<int>", "QList", []string{"int"}},
		{"QMap<int, QString>", "QMap", []string{"int", "QString"}},
		{"QMap<QString, QList<QString> >", "QMap", []string{"QString", "QList<QString>"}},
		{"QHash<QPair<int, int>, QString>", "QHash", []string{"QPair<int, int>", "QString"}},
	}
	for _, tc := range tests {
		name, args := SplitTemplate(tc.in)
		if name != tc.wantName || !reflect.DeepEqual(args, tc.wantArgs) {
			t.Errorf("SplitTemplate(%q) = %q %v, want %q %v", tc.in, name, args, tc.wantName, tc.wantArgs)
		}
	}
}
