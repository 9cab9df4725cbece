package decode

import (
	"strings"

	qtpeek "github.com/qtpeek/qtpeek"
	"github.com/qtpeek/qtpeek/errors"
)

// movableTypes are the framework value types declared relocatable
// (Q_DECLARE_TYPEINFO with the movable flag). A QList stores these inline in
// its slot array instead of behind an out-of-line node. The catalog is fixed:
// user types with the same declaration are misclassified as static, an
// accepted limitation of name-only introspection.
var movableTypes = map[string]bool{
	"QRect": true, "QRectF": true, "QString": true, "QMargins": true,
	"QLocale": true, "QChar": true, "QDate": true, "QTime": true,
	"QDateTime": true, "QVector": true, "QRegExp": true, "QPoint": true,
	"QPointF": true, "QByteArray": true, "QSize": true, "QSizeF": true,
	"QBitArray": true, "QLine": true, "QLineF": true, "QModelIndex": true,
	"QPersistentModelIndex": true, "QVariant": true, "QFileInfo": true,
	"QUrl": true, "QXmlStreamAttribute": true,
	"QXmlStreamNamespaceDeclaration": true,
	"QXmlStreamNotationDeclaration":  true,
	"QXmlStreamEntityDeclaration":    true,
}

// primitiveTypes are declared trivially relocatable in the framework headers.
var primitiveTypes = map[string]bool{
	"bool": true, "char": true, "signed char": true, "uchar": true,
	"unsigned char": true, "short": true, "ushort": true,
	"unsigned short": true, "int": true, "uint": true, "unsigned int": true,
	"long": true, "ulong": true, "unsigned long": true,
	"qint64": true, "quint64": true, "float": true, "double": true,
}

// listDecoder enumerates a QList's slot array. Each slot either holds the
// element inline or points at an out-of-line node, depending on a three-way
// classification of the element type.
type listDecoder struct {
	e         *Engine
	val       qtpeek.Value
	container string
	elemName  string
}

func (d *listDecoder) header() (dAddr uint64, count int64, err error) {
	e := d.e
	dAddr, err = e.dPointer(d.val)
	if err != nil {
		return 0, 0, err
	}

	ld := e.profile.ListData
	if err := e.checkRef(d.val.TypeName, dAddr, ld.MustOffset("ref")); err != nil {
		return 0, 0, err
	}

	begin, err := e.readI32(dAddr + uint64(ld.MustOffset("begin")))
	if err != nil {
		return 0, 0, errors.TraversalFault(errors.PhaseValidate, dAddr, err)
	}
	end, err := e.readI32(dAddr + uint64(ld.MustOffset("end")))
	if err != nil {
		return 0, 0, errors.TraversalFault(errors.PhaseValidate, dAddr, err)
	}

	count = end - begin
	if count < 0 || begin < 0 {
		return 0, 0, errors.InvalidSize(errors.PhaseValidate, d.val.TypeName, dAddr, count)
	}
	if count > e.opts.SizeLimit {
		return 0, 0, errors.Oversized(errors.PhaseValidate, d.val.TypeName, dAddr, count, e.opts.SizeLimit)
	}
	return dAddr, count, nil
}

func (d *listDecoder) Summary() (string, error) {
	if isVariantName(d.elemName) {
		return "", errVariantUnsupported
	}
	_, count, err := d.header()
	if err != nil {
		return "", err
	}
	if d.container == "QStringList" {
		return containerSummary("QStringList", "", count), nil
	}
	return containerSummary(d.container, d.elemName, count), nil
}

func (d *listDecoder) Children() (*Iterator, error) {
	if isVariantName(d.elemName) {
		return nil, errVariantUnsupported
	}
	dAddr, count, err := d.header()
	if err != nil {
		return nil, err
	}

	elem, err := d.e.elemInfo(d.elemName)
	if err != nil {
		return nil, err
	}
	indirect := d.slotIsIndirect(elem)

	e := d.e
	ld := e.profile.ListData
	begin, err := e.readI32(dAddr + uint64(ld.MustOffset("begin")))
	if err != nil {
		return nil, errors.TraversalFault(errors.PhaseEnumerate, dAddr, err)
	}
	arrayBase := dAddr + uint64(ld.MustOffset("array"))
	ptrSize := uint64(e.arch.PointerSize)

	i := int64(0)
	return newIterator(e.opts.SizeLimit, func() (qtpeek.Child, error, bool) {
		if i >= count {
			return qtpeek.Child{}, nil, false
		}
		slotAddr := arrayBase + uint64(begin+i)*ptrSize

		elemAddr := slotAddr
		if indirect {
			p, err := e.readPointer(slotAddr)
			if err != nil {
				return qtpeek.Child{}, errors.TraversalFault(errors.PhaseEnumerate, slotAddr, err), false
			}
			if p == 0 {
				return qtpeek.Child{}, errors.TraversalFault(errors.PhaseEnumerate, slotAddr, nil), false
			}
			elemAddr = p
		}

		child := qtpeek.Child{
			Label: indexLabel(i),
			Value: qtpeek.Value{TypeName: elem.name, Addr: elemAddr},
		}
		i++
		return child, nil, true
	}), nil
}

// slotIsIndirect replicates the framework's node representation choice:
// elements larger than a pointer, and non-relocatable non-pointer elements,
// live behind an out-of-line node whose address fills the slot.
func (d *listDecoder) slotIsIndirect(elem elemInfo) bool {
	isLarge := elem.size > uint64(d.e.arch.PointerSize)
	isPointer := strings.HasSuffix(elem.name, "*")
	templateName, _ := splitTemplateName(elem.name)
	relocatable := movableTypes[elem.name] || movableTypes[templateName] || primitiveTypes[elem.name]
	isStatic := !relocatable && !isPointer
	return isLarge || isStatic
}

// splitTemplateName strips template arguments: "QVector<int>" matches the
// catalog under "QVector".
func splitTemplateName(name string) (string, bool) {
	if i := strings.IndexByte(name, '<'); i > 0 {
		return name[:i], true
	}
	return name, false
}

func (d *listDecoder) Expandable() bool  { return true }
func (d *listDecoder) Hint() qtpeek.Hint { return qtpeek.HintNone }
