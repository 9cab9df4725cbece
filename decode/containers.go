package decode

import (
	"github.com/qtpeek/qtpeek/errors"
	"github.com/qtpeek/qtpeek/layout"
)

// elemInfo is the size/alignment view of a container element type. Alignment
// is guessed from the size (the host oracle reports sizes only), which is
// right for every framework value type and primitive this catalog covers.
type elemInfo struct {
	name   string
	size   uint64
	align  uint32
	stride uint64
}

func (e *Engine) elemInfo(name string) (elemInfo, error) {
	rt, err := e.res.Resolve(name)
	if err != nil {
		return elemInfo{}, err
	}
	align := layout.NaturalAlign(rt.Size)
	return elemInfo{
		name:   rt.Name,
		size:   rt.Size,
		align:  align,
		stride: uint64(layout.AlignTo(uint32(rt.Size), align)),
	}, nil
}

// containerSummary renders "QList<QString>" style summaries with the "empty "
// prefix for zero-element containers.
func containerSummary(container string, args string, count int64) string {
	prefix := ""
	if count == 0 {
		prefix = "empty "
	}
	if args == "" {
		return prefix + container
	}
	return prefix + container + "<" + args + ">"
}

// isVariantName reports whether a template argument is QVariant; variant
// payloads carry their own dynamic type machinery this engine does not
// interpret, so such containers are summarized as unsupported.
func isVariantName(name string) bool {
	return name == "QVariant"
}

var errVariantUnsupported = errors.Unsupported(errors.PhaseDecode, "QVariant element type")
